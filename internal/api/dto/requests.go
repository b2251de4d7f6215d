package dto

import "github.com/go-playground/validator/v10"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type RegisterSubscriberRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone" validate:"required"`
	Country string `json:"country" validate:"omitempty,len=2"`
}

type SetPushTokenRequest struct {
	PushToken string `json:"push_token" validate:"required"`
}

type RecordPaymentRequest struct {
	SubscriberID string `json:"subscriber_id" validate:"required"`
	Amount       string `json:"amount" validate:"required"`
	Currency     string `json:"currency" validate:"omitempty,len=3"`
}

type BroadcastRequest struct {
	Message string `json:"message" validate:"required,max=1600"`
}

var Validate = validator.New()
