package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"realestate-service/internal/apperror"
	"realestate-service/internal/auth"
	"realestate-service/internal/model"
	"realestate-service/internal/repository"
	"realestate-service/internal/validation"
)

const msgUserExists = "User with this email or username already exists"

// AuthService registers identities and signs them in.
type AuthService struct {
	identities repository.IdentityRepository
	tokens     *auth.TokenManager
	recorder   AuthRecorder
	log        *zap.Logger
}

func NewAuthService(ir repository.IdentityRepository, tm *auth.TokenManager, rec AuthRecorder, log *zap.Logger) *AuthService {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &AuthService{identities: ir, tokens: tm, recorder: rec, log: log}
}

func (s *AuthService) respond(ident *model.Identity) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(ident)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &model.AuthResponse{
		ID:       ident.ID,
		Name:     ident.Name,
		Username: ident.Username,
		Email:    ident.Email,
		Role:     ident.Role,
		Token:    token,
	}, nil
}

// Register creates an identity in the store for its role and returns a token.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	if errs := validation.Registration(req); len(errs) > 0 {
		s.recorder.AuthAttempt("register", string(req.Role), "invalid")
		return nil, apperror.Validation(errs)
	}

	_, err := s.identities.FindConflict(ctx, req.Role, req.Email, req.Username, "")
	if err == nil {
		s.recorder.AuthAttempt("register", string(req.Role), "conflict")
		return nil, apperror.BadRequest(msgUserExists)
	}
	if _, err := missing(err); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	ident := &model.Identity{
		Name:         strings.TrimSpace(req.Name),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if req.Role.RequiresPhone() {
		ident.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	}
	if err := s.identities.Create(ctx, req.Role, ident); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.recorder.AuthAttempt("register", string(req.Role), "conflict")
			return nil, apperror.BadRequest(msgUserExists)
		}
		return nil, apperror.Internal(err)
	}

	s.recorder.AuthAttempt("register", string(req.Role), "ok")
	s.log.Info("identity registered", zap.String("role", string(req.Role)), zap.String("id", ident.ID))
	return s.respond(ident)
}

// SignIn looks the identity up by email within the requested role only.
func (s *AuthService) SignIn(ctx context.Context, req model.SignInRequest) (*model.AuthResponse, error) {
	if errs := validation.SignIn(req); len(errs) > 0 {
		s.recorder.AuthAttempt("signin", string(req.Role), "invalid")
		return nil, apperror.Validation(errs)
	}

	ident, err := s.identities.GetByEmail(ctx, req.Role, req.Email)
	if notFound, err := missing(err); err != nil {
		return nil, err
	} else if notFound {
		s.recorder.AuthAttempt("signin", string(req.Role), "unknown_email")
		s.log.Warn("sign-in rejected", zap.String("role", string(req.Role)), zap.String("reason", "unknown email"))
		return nil, apperror.Unauthorized("Invalid email or role")
	}

	if !auth.CheckPassword(req.Password, ident.PasswordHash) {
		s.recorder.AuthAttempt("signin", string(req.Role), "invalid_password")
		s.log.Warn("sign-in rejected", zap.String("role", string(req.Role)), zap.String("id", ident.ID))
		return nil, apperror.Unauthorized("Invalid password")
	}

	s.recorder.AuthAttempt("signin", string(req.Role), "ok")
	return s.respond(ident)
}
