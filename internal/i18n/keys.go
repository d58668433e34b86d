// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// User Management
	KeyUserProfileUpdated = "user.profile_updated"
	KeyUserNotFound       = "user.not_found"
	KeyUserSuspended      = "user.suspended"
	KeyUserAccessDenied   = "user.access_denied"

	// Assets
	KeyAssetCreated  = "asset.created"
	KeyAssetUpdated  = "asset.updated"
	KeyAssetDeleted  = "asset.deleted"
	KeyAssetNotFound = "asset.not_found"
	KeyAssetTraded   = "asset.traded"
	KeyAssetNotOwner = "asset.not_owner"

	// Unlocks and payments
	KeyUnlockRequired      = "unlock.required"
	KeyUnlockSuccess       = "unlock.success"
	KeyPaymentSuccess      = "payment.success"
	KeyPaymentFailed       = "payment.failed"
	KeyPaymentPending      = "payment.pending"
	KeyPaymentMethodNeeded = "payment.method_required"

	// Chat
	KeyChatMessageSent    = "chat.message_sent"
	KeyChatInvalidMessage = "chat.invalid_message"
	KeyChatNotFound       = "chat.not_found"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationEmail    = "validation.invalid_email"
	KeyValidationPassword = "validation.invalid_password"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"
)
