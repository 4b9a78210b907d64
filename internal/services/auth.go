package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
	"github.com/dailyfocus/dailyfocus-backend/internal/repos"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

const wechatSessionEndpoint = "https://api.weixin.qq.com/sns/jscode2session"

type LoginInput struct {
	// Code is the WeChat login code exchanged via jscode2session.
	Code string
	// TrustedOpenID comes from the hosting platform's injected header and
	// skips the jscode2session round trip when present.
	TrustedOpenID string
}

type LoginOutput struct {
	Token string
	User  *types.User
	IsNew bool
}

// AuthService exchanges a WeChat login for a JWT and bootstraps new
// accounts with a default conversation and an empty profile.
type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*LoginOutput, error)
	VerifyToken(tokenString string) (uuid.UUID, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	users         repos.UserRepo
	conversations repos.ConversationRepo
	profiles      repos.UserProfileRepo
	jwtSecret     string
	tokenTTL      time.Duration
	wechatAppID   string
	wechatSecret  string
	wechatBaseURL string
	httpClient    *http.Client
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	users repos.UserRepo,
	conversations repos.ConversationRepo,
	profiles repos.UserProfileRepo,
	jwtSecret string,
	tokenTTL time.Duration,
	wechatAppID string,
	wechatSecret string,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		users:         users,
		conversations: conversations,
		profiles:      profiles,
		jwtSecret:     jwtSecret,
		tokenTTL:      tokenTTL,
		wechatAppID:   wechatAppID,
		wechatSecret:  wechatSecret,
		wechatBaseURL: wechatSessionEndpoint,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	openid := in.TrustedOpenID
	if openid == "" {
		if in.Code == "" {
			return nil, ErrMissingLoginCode
		}
		resolved, err := s.resolveOpenID(ctx, in.Code)
		if err != nil {
			return nil, err
		}
		openid = resolved
	}

	user, err := s.users.GetByOpenID(ctx, nil, openid)
	if err != nil {
		return nil, err
	}

	isNew := user == nil
	if isNew {
		user = &types.User{
			ID:          uuid.New(),
			OpenID:      openid,
			Preferences: datatypes.NewJSONType(types.DefaultPreferences()),
		}
		now := time.Now()
		user.LastActiveAt = &now

		// New accounts get their default conversation and empty profile
		// up front so the first turn and first profile read never race a
		// lazy bootstrap.
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if _, err := s.users.Create(ctx, tx, user); err != nil {
				return err
			}
			if _, err := s.conversations.Create(ctx, tx, &types.Conversation{
				ID:     uuid.New(),
				UserID: user.ID,
				Title:  types.DefaultConversationTitle,
			}); err != nil {
				return err
			}
			_, err := s.profiles.Create(ctx, tx, emptyProfile(user.ID))
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("bootstrap user: %w", err)
		}
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginOutput{Token: token, User: user, IsNew: isNew}, nil
}

type wechatSessionResponse struct {
	OpenID  string `json:"openid"`
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (s *authService) resolveOpenID(ctx context.Context, code string) (string, error) {
	params := url.Values{}
	params.Set("appid", s.wechatAppID)
	params.Set("secret", s.wechatSecret)
	params.Set("js_code", code)
	params.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.wechatBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Error("wechat session call failed", "error", err)
		return "", fmt.Errorf("微信登录失败")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", fmt.Errorf("微信登录失败")
	}

	var parsed wechatSessionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("微信登录失败")
	}
	if parsed.ErrCode != 0 || parsed.OpenID == "" {
		s.log.Warn("wechat session rejected", "errcode", parsed.ErrCode, "errmsg", parsed.ErrMsg)
		return "", fmt.Errorf("微信登录失败: %s", parsed.ErrMsg)
	}
	return parsed.OpenID, nil
}

func (s *authService) issueToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID.String(),
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) VerifyToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}
	raw, ok := claims["userId"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}
	return userID, nil
}
