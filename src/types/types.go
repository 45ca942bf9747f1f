package types

import (
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type SuccessPageQuery struct {
	SessionID *string `form:"session_id"`
}

type GateLoginRequestBody struct {
	Password string `json:"password" binding:"required,min=1,max=128"`
}
