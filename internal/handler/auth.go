package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

// StaffAccount is the single login allowed to change hotel data.
type StaffAccount struct {
	Email        string
	PasswordHash string // bcrypt
}

// AuthHandler issues access tokens to staff.
type AuthHandler struct {
	staff  StaffAccount
	secret string
	ttlMin int
	log    logrus.FieldLogger
}

func NewAuthHandler(staff StaffAccount, jwtSecret string, accessTTLMin int, log logrus.FieldLogger) *AuthHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuthHandler{staff: staff, secret: jwtSecret, ttlMin: accessTTLMin, log: log}
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type loginResp struct {
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Access tokenPart `json:"access"`
}

// Login handles POST /v1/auth/login: verify the staff credentials and
// return a signed access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != strings.ToLower(h.staff.Email) || !utils.VerifyPassword(h.staff.PasswordHash, req.Password) {
		h.log.WithField("email", email).Warn("failed staff login")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.secret, email, middleware.RoleStaff, h.ttlMin)
	if err != nil {
		h.log.WithError(err).Error("issue access token")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, loginResp{
		Email:  email,
		Role:   middleware.RoleStaff,
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}
