package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/user"
)

// appJWTConfig is the default JWT auth middleware config.
var appJWTConfig = middleware.JWTConfig{
	SigningKey:    []byte(core.Conf.SecretKey),
	SigningMethod: middleware.AlgorithmHS256,
	ContextKey:    "userToken",
	Claims:        new(Claims),
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	IsTeacher bool   `json:"is_teacher,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
}

func GetUserClaims(usr user.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:      usr.Name,
		Email:     usr.Email,
		Role:      usr.Role,
		IsTeacher: usr.IsTeacher(),
		IsAdmin:   usr.IsAdmin(),
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey.([]byte))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// adminRequired rejects callers without the admin role.
func adminRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		if !claims.IsAdmin {
			return errHttpForbidden
		}
		return next(ctx)
	}
}

type (
	loginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	loginResponse struct {
		Token string `json:"token"`
	}

	passwordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	passwordResetConfirm struct {
		UID             string `json:"uid" validate:"required"`
		Token           string `json:"token" validate:"required"`
		Password        string `json:"password" validate:"required"`
		PasswordConfirm string `json:"password_confirm" validate:"required"`
	}
)

func (s *server) registerAuthAPI(g *echo.Group) {
	ag := g.Group("/auth")
	ag.POST("/login", s.login)
	ag.POST("/password-reset", s.requestPasswordReset)
	ag.POST("/password-reset/confirm", s.confirmPasswordReset)
}

func (s *server) login(ctx echo.Context) error {
	var req loginRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := core.Validate.StructCtx(ctx.Request().Context(), &req); err != nil {
		return core.TranslateValidatorErrors(err)
	}

	usr, err := s.opts.UserSvc.Authenticate(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errAuthenticationFailed
		}
		return err
	}
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, loginResponse{Token: token})
}

func (s *server) requestPasswordReset(ctx echo.Context) error {
	var req passwordResetRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := core.Validate.StructCtx(ctx.Request().Context(), &req); err != nil {
		return core.TranslateValidatorErrors(err)
	}
	if err := s.opts.UserSvc.RequestPasswordReset(ctx.Request().Context(), req.Email); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusAccepted)
}

func (s *server) confirmPasswordReset(ctx echo.Context) error {
	var req passwordResetConfirm
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := core.Validate.StructCtx(ctx.Request().Context(), &req); err != nil {
		return core.TranslateValidatorErrors(err)
	}
	err := s.opts.UserSvc.ResetPassword(ctx.Request().Context(), req.UID, req.Token, req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}
	return ctx.NoContent(http.StatusOK)
}
