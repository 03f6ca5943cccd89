package dto

// SettingItem is the wire form of a configuration setting.
type SettingItem struct {
	Clave     string `json:"clave"`
	Valor     string `json:"valor"`
	Tipo      string `json:"tipo"`
	Editable  bool   `json:"editable"`
	Categoria string `json:"categoria,omitempty"`
}

// CreateSettingRequest registers a new policy setting.
type CreateSettingRequest struct {
	Clave     string `json:"clave" validate:"required,max=100"`
	Valor     string `json:"valor" validate:"required"`
	Tipo      string `json:"tipo" validate:"required,oneof=string number boolean json"`
	Editable  *bool  `json:"editable"`
	Categoria string `json:"categoria" validate:"max=100"`
}

// UpdateSettingRequest changes the value of an existing setting.
type UpdateSettingRequest struct {
	Valor string `json:"valor" validate:"required"`
}

// BatchGetSettingsRequest fetches several settings by key.
type BatchGetSettingsRequest struct {
	Claves []string `json:"claves" validate:"required,min=1,dive,required"`
}

// BulkSettingItem is one entry of a bulk update.
type BulkSettingItem struct {
	Clave string `json:"clave" validate:"required"`
	Valor string `json:"valor" validate:"required"`
}

// BulkUpdateSettingsRequest applies several value updates transactionally.
type BulkUpdateSettingsRequest struct {
	Items []BulkSettingItem `json:"items" validate:"required,min=1,dive"`
}
