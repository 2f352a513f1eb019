package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type accountRecord struct {
	bun.BaseModel `bun:"table:ct_accounts,alias:ca"`

	ID          string    `bun:"id,pk"`
	Name        string    `bun:"name,notnull"`
	DisplayName string    `bun:"display_name"`
	URL         string    `bun:"url,notnull,unique"`
	Disabled    bool      `bun:"disabled,notnull,default:false"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type extensionRecord struct {
	bun.BaseModel `bun:"table:ct_extensions,alias:ce"`

	ID               string    `bun:"id,pk"`
	Code             string    `bun:"code,notnull,unique"`
	Name             string    `bun:"name,notnull"`
	Description      string    `bun:"description"`
	AuthorizationURL string    `bun:"authorization_url,notnull"`
	TokenURL         string    `bun:"token_url,notnull"`
	MessageURL       string    `bun:"message_url"`
	ClientID         string    `bun:"client_id,notnull"`
	ClientSecret     string    `bun:"client_secret,notnull"`
	Scope            string    `bun:"scope"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// installationRecord keeps the token column nullable so the exchange write can
// guard on token IS NULL.
type installationRecord struct {
	bun.BaseModel `bun:"table:ct_installations,alias:ci"`

	ID          string    `bun:"id,pk"`
	Code        string    `bun:"code,notnull,unique"`
	AccountID   string    `bun:"account_id,notnull"`
	ExtensionID string    `bun:"extension_id,notnull"`
	Token       *string   `bun:"token"`
	Status      string    `bun:"status,notnull"`
	LastError   string    `bun:"last_error"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type profileRecord struct {
	bun.BaseModel `bun:"table:ct_profiles,alias:cp"`

	ID             string    `bun:"id,pk"`
	InstallationID string    `bun:"installation_id,notnull"`
	Code           string    `bun:"code,notnull,unique"`
	Name           string    `bun:"name,notnull"`
	AppKey         string    `bun:"app_key"`
	AppSecret      string    `bun:"app_secret"`
	TokenURL       string    `bun:"token_url"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type webhookRegistrationRecord struct {
	bun.BaseModel `bun:"table:ct_webhook_registrations,alias:cw"`

	ID             string    `bun:"id,pk"`
	InstallationID string    `bun:"installation_id,notnull,unique"`
	RemoteID       string    `bun:"remote_id,notnull"`
	Secret         string    `bun:"secret,notnull"`
	CallbackURL    string    `bun:"callback_url,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type actionRecord struct {
	bun.BaseModel `bun:"table:ct_extension_actions,alias:cea"`

	ID             string    `bun:"id,pk"`
	InstallationID string    `bun:"installation_id,notnull"`
	ActionName     string    `bun:"action_name,notnull"`
	TableSource    string    `bun:"table_source,notnull"`
	EventType      string    `bun:"event_type,notnull"`
	Message        string    `bun:"message,notnull"`
	ResponseField  string    `bun:"response_field_mapped_to"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
