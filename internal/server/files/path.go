package files

import "fmt"

// Object keys follow users/{userID}/files/{fileID}. The user id is the first
// path segment so that the access policies installed at bootstrap can scope
// every operation to the caller's own subtree. Any change here is
// security-sensitive: a wrong prefix is a cross-user data leak.
//
// fileID is used verbatim as the key leaf. No escaping is performed, so
// callers must supply identifiers that are already safe path segments
// (generated UUIDs); display names never belong in the key.

// ObjectKey returns the storage key for one file of one user. Distinct
// (userID, fileID) pairs always map to distinct keys.
func ObjectKey(userID, fileID string) string {
	return fmt.Sprintf("users/%s/files/%s", userID, fileID)
}

// UserPrefix returns the listing prefix covering every file of one user.
func UserPrefix(userID string) string {
	return fmt.Sprintf("users/%s/files/", userID)
}
