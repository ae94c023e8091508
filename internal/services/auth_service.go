package services

import (
	"context"
	"errors"
	"time"

	"spotmarket/internal/domain"
	"spotmarket/internal/domain/models"
	"spotmarket/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "spotmarket"

type UserStore interface {
	Create(ctx context.Context, u models.User) error
	GetByPID(ctx context.Context, pid string) (models.User, error)
}

type RegisterInput struct {
	PID          string `json:"pid" validate:"required,min=3,max=64,alphanum"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	LicensePlate string `json:"license_plate" validate:"max=32"`
}

type LoginInput struct {
	PID      string `json:"pid" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

type AuthService struct {
	Users     UserStore
	Secret    []byte
	TTL       time.Duration
	Now       func() time.Time
	RequestID string
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	if err := validateStruct(in); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "hash password", Err: err}
	}

	u := models.User{
		PID:          in.PID,
		PasswordHash: string(hash),
		LicensePlate: utils.NormalizePlate(in.LicensePlate),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return models.User{}, err
	}

	utils.LogEvent(s.RequestID, "auth", "register", "registered "+u.PID)
	return u, nil
}

// Login checks the password and issues a signed token whose subject is the pid.
func (s AuthService) Login(ctx context.Context, in LoginInput) (string, error) {
	if err := validateStruct(in); err != nil {
		return "", err
	}

	u, err := s.Users.GetByPID(ctx, in.PID)
	if err != nil {
		if domain.IsNotFound(err) {
			return "", domain.UnauthenticatedError{Msg: "wrong pid or password"}
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return "", domain.UnauthenticatedError{Msg: "wrong pid or password"}
	}

	now := s.now()
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   u.PID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", domain.InternalError{Msg: "sign token", Err: err}
	}
	return signed, nil
}

// ParseToken returns the pid a token was issued to.
func (s AuthService) ParseToken(raw string) (string, error) {
	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.UnauthenticatedError{Msg: "token expired"}
		}
		return "", domain.UnauthenticatedError{Msg: "invalid token"}
	}
	if claims.Subject == "" {
		return "", domain.UnauthenticatedError{Msg: "token has no subject"}
	}
	return claims.Subject, nil
}
