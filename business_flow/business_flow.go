// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/adsphere/adsphere/app/dto"
	"github.com/adsphere/adsphere/models"
	"github.com/adsphere/adsphere/repository"
	"github.com/adsphere/adsphere/utils"
)

const RequestIDKey = "X-Request-ID"

// timeFormat is the wire format for timestamps in response payloads.
const timeFormat = time.RFC3339

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	DeviceInfo map[string]string `json:"device_info,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		DeviceInfo: make(map[string]string),
		Additional: make(map[string]string),
	}
}

// AddDeviceInfo adds device information to the metadata
func (cm *ClientMetadata) AddDeviceInfo(key, value string) {
	if cm.DeviceInfo == nil {
		cm.DeviceInfo = make(map[string]string)
	}
	cm.DeviceInfo[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToAuthUserDTO converts a user model to AuthUserDTO for authentication responses
func ToAuthUserDTO(user models.User) dto.AuthUserDTO {
	return dto.AuthUserDTO{
		ID:             user.ID,
		UUID:           user.UUID.String(),
		Name:           user.Name,
		Email:          user.Email,
		Mobile:         user.Mobile,
		Role:           user.Role,
		CompanyName:    user.CompanyName,
		CompanyWebsite: user.CompanyWebsite,
		Industry:       user.Industry,
		CompanyAddress: user.CompanyAddress,
		IsVerified:     user.IsVerified,
		IsActive:       user.IsActive,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
		LastLoginAt:    formatTimePtr(user.LastLoginAt),
	}
}

func ToSessionDTO(session models.UserSession) dto.SessionDTO {
	return dto.SessionDTO{
		SessionToken: session.SessionToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

// newSession builds a session record for freshly issued tokens.
func newSession(userID uint, accessToken, refreshToken string, metadata *ClientMetadata) (*models.UserSession, error) {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	return &models.UserSession{
		CorrelationID: uuid.New(),
		UserID:        userID,
		SessionToken:  accessToken,
		RefreshToken:  &refreshToken,
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
		IsActive:      utils.ToPtr(true),
		ExpiresAt:     utils.UTCNowAdd(utils.SessionTimeout),
	}, nil
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// getUser loads a user by ID and maps absence to ErrUserNotFound
func getUser(ctx context.Context, repo repository.UserRepository, userID uint) (*models.User, error) {
	user, err := repo.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// createAuditLog writes an audit entry. Audit failures never fail the calling flow.
func createAuditLog(ctx context.Context, auditRepo repository.AuditLogRepository, userID *uint, action, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	ipAddress := ""
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	// Extract request ID from context if available
	if requestID := ctx.Value(RequestIDKey); requestID != nil {
		if requestIDStr, ok := requestID.(string); ok {
			audit.RequestID = &requestIDStr
		}
	}

	return auditRepo.Save(ctx, audit)
}
