package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"blog-backend/internal/model"
	"blog-backend/internal/repository"
	"blog-backend/pkg/jwt"
	"blog-backend/pkg/logger"
	"blog-backend/pkg/mailer"
	"blog-backend/pkg/password"

	"github.com/lithammer/shortuuid/v4"
	"go.uber.org/zap"
)

// OTPDigits 重置密码验证码位数
const OTPDigits = 7

// 用户名冲突时追加后缀的最大尝试次数
const maxUsernameAttempts = 5

var errInvalidResetTriple = NewValidationError("Invalid OTP, reset token, or user ID.")

type AuthService struct {
	repos    *repository.Repositories
	jwt      *jwt.JWTService
	mailer   mailer.Sender
	resetURL string
}

func NewAuthService(repos *repository.Repositories, jwtSvc *jwt.JWTService, sender mailer.Sender, resetURL string) *AuthService {
	return &AuthService{repos: repos, jwt: jwtSvc, mailer: sender, resetURL: resetURL}
}

// RegisterInput 注册参数
type RegisterInput struct {
	Email     string
	FullName  string
	Password  string
	Password2 string
}

// Register 注册：校验密码后在同一事务中创建用户与资料
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.TrimSpace(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if email == "" || in.Password == "" {
		return nil, NewValidationError("Missing required fields.")
	}
	if in.Password != in.Password2 {
		return nil, NewValidationError("Password fields didn't match.")
	}
	if err := password.Validate(in.Password, email, fullName); err != nil {
		return nil, &AppError{Kind: KindValidation, Message: err.Error(), Err: err}
	}

	taken, err := s.repos.Users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &AppError{Kind: KindValidation, Message: ErrEmailTaken.Error(), Err: ErrEmailTaken}
	}

	username, err := s.availableUsername(ctx, model.EmailLocalPart(email))
	if err != nil {
		return nil, err
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		FullName:     fullName,
		PasswordHash: hash,
	}
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Users.Create(ctx, user); err != nil {
			return err
		}
		profile := &model.Profile{
			UserID:   user.ID,
			FullName: user.FullName,
			Image:    model.DefaultProfileImage,
		}
		if err := tx.Profiles.Create(ctx, profile); err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, &AppError{Kind: KindValidation, Message: ErrEmailTaken.Error(), Err: ErrEmailTaken}
		}
		return nil, err
	}

	logger.Info("用户注册成功", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// availableUsername 邮箱前缀已被占用时追加短后缀
func (s *AuthService) availableUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 0; i < maxUsernameAttempts; i++ {
		taken, err := s.repos.Users.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strings.ToLower(shortuuid.New()[:4])
	}
	return candidate, nil
}

// Login 校验邮箱密码并签发令牌对
func (s *AuthService) Login(ctx context.Context, email, plain string) (*jwt.TokenPair, error) {
	user, err := s.repos.Users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, NewUnauthenticatedError("No active account found with the given credentials", nil)
		}
		return nil, err
	}
	if !password.Verify(plain, user.PasswordHash) {
		return nil, NewUnauthenticatedError("No active account found with the given credentials", nil)
	}
	return s.jwt.GeneratePair(identityOf(user))
}

// Refresh 轮换 refresh 令牌，旧令牌作废
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	pair, err := s.jwt.Rotate(ctx, refreshToken, func(ctx context.Context, userID uint) (jwt.Identity, error) {
		user, err := s.repos.Users.GetByID(ctx, userID)
		if err != nil {
			return jwt.Identity{}, err
		}
		return identityOf(user), nil
	})
	switch {
	case err == nil:
		return pair, nil
	case errors.Is(err, jwt.ErrInvalidToken), errors.Is(err, jwt.ErrWrongType),
		errors.Is(err, jwt.ErrTokenRevoked), repository.IsNotFound(err):
		return nil, NewUnauthenticatedError("Token is invalid or expired", err)
	default:
		return nil, err
	}
}

func identityOf(u *model.User) jwt.Identity {
	return jwt.Identity{
		UserID:   u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Username: u.Username,
	}
}

// ResetTicket 一次重置密码请求生成的凭据
type ResetTicket struct {
	UserID     uint
	Email      string
	OTP        string
	ResetToken string
	Link       string
}

// RequestPasswordReset 生成 OTP 与重置令牌，保存后同步发送邮件
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*ResetTicket, error) {
	user, err := s.repos.Users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, NewNotFoundError("User")
		}
		return nil, err
	}

	otp, err := password.GenerateOTP(OTPDigits)
	if err != nil {
		return nil, err
	}
	token, err := s.jwt.GenerateToken(identityOf(user), jwt.TokenTypeReset)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Users.SetResetCredentials(ctx, user.ID, otp, token); err != nil {
		return nil, err
	}

	ticket := &ResetTicket{
		UserID:     user.ID,
		Email:      user.Email,
		OTP:        otp,
		ResetToken: token,
		Link:       s.resetLink(user.ID, otp, token),
	}

	msg, err := mailer.PasswordReset(user.Email, mailer.PasswordResetData{
		Username: user.Username,
		Link:     ticket.Link,
		OTP:      otp,
	})
	if err != nil {
		return nil, NewInternalError(err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		logger.Error("发送重置密码邮件失败", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, NewInternalError(err)
	}
	return ticket, nil
}

func (s *AuthService) resetLink(userID uint, otp, token string) string {
	q := url.Values{}
	q.Set("otp", otp)
	q.Set("uidb64", strconv.FormatUint(uint64(userID), 10))
	q.Set("reset_token", token)
	return s.resetURL + "?" + q.Encode()
}

// ConfirmResetInput 重置密码参数
type ConfirmResetInput struct {
	UIDB64     string
	OTP        string
	ResetToken string
	Password   string
}

// ConfirmPasswordReset 校验 (uid, otp, token) 三元组后更新密码，凭据只能使用一次
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, in ConfirmResetInput) error {
	if in.UIDB64 == "" || in.OTP == "" || in.ResetToken == "" || in.Password == "" {
		return NewValidationError("Missing required fields.")
	}
	uid, err := strconv.ParseUint(in.UIDB64, 10, 64)
	if err != nil {
		return errInvalidResetTriple
	}

	user, err := s.repos.Users.GetByResetTriple(ctx, uint(uid), in.OTP, in.ResetToken)
	if err != nil {
		if repository.IsNotFound(err) {
			return errInvalidResetTriple
		}
		return err
	}
	claims, err := s.jwt.ValidateToken(in.ResetToken, jwt.TokenTypeReset)
	if err != nil || claims.UserID != user.ID {
		return errInvalidResetTriple
	}

	if err := password.Validate(in.Password, user.Email, user.Username, user.FullName); err != nil {
		return &AppError{Kind: KindValidation, Message: err.Error(), Err: err}
	}
	hash, err := password.Hash(in.Password)
	if err != nil {
		return err
	}
	if err := s.repos.Users.UpdatePassword(ctx, user.ID, in.OTP, hash); err != nil {
		if repository.IsNotFound(err) {
			return errInvalidResetTriple
		}
		return err
	}

	logger.Info("用户重置密码成功", zap.Uint("user_id", user.ID))
	return nil
}
