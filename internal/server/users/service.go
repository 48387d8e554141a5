package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkarpenko/codepad/internal/common"
	"github.com/mkarpenko/codepad/internal/server/auth"
	"github.com/mkarpenko/codepad/internal/server/config"
	"github.com/mkarpenko/codepad/internal/server/refreshtokens"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type Service struct {
	repo                         Repository
	refreshTokenRepo             refreshtokens.Repository
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewService(repo Repository, refreshTokenRepo refreshtokens.Repository, cfg *config.Config) *Service {
	return &Service{
		repo:                         repo,
		refreshTokenRepo:             refreshTokenRepo,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates an email+password account and signs the new user in.
func (s *Service) Register(ctx context.Context, email, name, password string) (*User, *TokenPair, error) {

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	user := &User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, nil, common.ErrorAlreadyExists
		}
		return nil, nil, fmt.Errorf("error creating user: %v", err)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

func (s *Service) generateAccessToken(user *User) (string, error) {
	return auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *Service) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *Service) issueTokenPair(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	err = s.refreshTokenRepo.Create(ctx, user.ID, refreshToken, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Login verifies an email+password pair. Absent users and wrong passwords
// are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	// OAuth-only accounts carry no password hash and cannot log in here.
	if len(user.PasswordHash) == 0 {
		return nil, common.ErrorUnauthorized
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}

	return s.issueTokenPair(ctx, user)
}

// Refresh rotates a refresh token: the presented token is consumed and a
// fresh pair is issued. Expired tokens are deleted on sight.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {

	rt, err := s.refreshTokenRepo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if time.Now().After(rt.ExpiresAt) {
		_ = s.refreshTokenRepo.Delete(ctx, rt.Token)
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repo.GetByID(ctx, rt.UserID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.refreshTokenRepo.Delete(ctx, rt.Token); err != nil {
		return nil, common.ErrorInternal
	}

	return s.issueTokenPair(ctx, user)
}

// GetByID loads the profile for an authenticated user.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// LoginGithub signs a GitHub identity in, creating or linking the local
// account as needed. Matching is by GitHub ID first, then by verified email.
func (s *Service) LoginGithub(ctx context.Context, githubID, email, name string) (*TokenPair, error) {

	user, err := s.repo.GetByGithubID(ctx, githubID)
	if err == nil {
		return s.issueTokenPair(ctx, user)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	user, err = s.repo.GetByEmail(ctx, email)
	if err == nil {
		if err := s.repo.LinkGithubID(ctx, user.ID, githubID); err != nil {
			return nil, common.ErrorInternal
		}
		return s.issueTokenPair(ctx, user)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	user = &User{
		Email:    email,
		Name:     name,
		GithubID: githubID,
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return s.issueTokenPair(ctx, user)
}
