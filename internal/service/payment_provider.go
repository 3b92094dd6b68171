package service

import (
	"context"

	"github.com/noormarket/internal/config"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/payment/stripe"
)

// 支付意向状态（提供方状态归一化结果）
const (
	PaymentIntentStatusPending = "pending"
	PaymentIntentStatusSuccess = "success"
	PaymentIntentStatusFailed  = "failed"
)

// PaymentIntentInput 创建支付意向输入
type PaymentIntentInput struct {
	SessionID   string
	OrderNo     string
	Amount      models.Money
	Currency    string
	Description string
}

// PaymentIntentResult 支付意向结果
type PaymentIntentResult struct {
	IntentID     string
	ClientSecret string
	Status       string
	Amount       string
	Currency     string
}

// PaymentProvider 支付提供方接口
type PaymentProvider interface {
	CreateIntent(ctx context.Context, input PaymentIntentInput) (*PaymentIntentResult, error)
	QueryIntent(ctx context.Context, intentID string) (*PaymentIntentResult, error)
	CancelIntent(ctx context.Context, intentID string) error
}

// StripeProvider Stripe PaymentIntents 实现
type StripeProvider struct {
	cfg *stripe.Config
}

// NewStripeProvider 从配置创建 Stripe 提供方
func NewStripeProvider(cfg config.StripeConfig) *StripeProvider {
	stripeCfg := &stripe.Config{
		SecretKey:               cfg.SecretKey,
		PublishableKey:          cfg.PublishableKey,
		WebhookSecret:           cfg.WebhookSecret,
		APIBaseURL:              cfg.APIBase,
		WebhookToleranceSeconds: int(cfg.WebhookToleranceMS / 1000),
	}
	stripeCfg.Normalize()
	return &StripeProvider{cfg: stripeCfg}
}

// Config 返回底层 Stripe 配置（Webhook 校验使用）
func (p *StripeProvider) Config() *stripe.Config {
	return p.cfg
}

// CreateIntent 创建 PaymentIntent
func (p *StripeProvider) CreateIntent(ctx context.Context, input PaymentIntentInput) (*PaymentIntentResult, error) {
	result, err := stripe.CreateIntent(ctx, p.cfg, stripe.CreateIntentInput{
		CheckoutSessionID: input.SessionID,
		OrderNo:           input.OrderNo,
		Amount:            input.Amount.String(),
		Currency:          input.Currency,
		Description:       input.Description,
	})
	if err != nil {
		return nil, err
	}
	return intentResultFromStripe(result), nil
}

// QueryIntent 查询 PaymentIntent 状态
func (p *StripeProvider) QueryIntent(ctx context.Context, intentID string) (*PaymentIntentResult, error) {
	result, err := stripe.QueryIntent(ctx, p.cfg, intentID)
	if err != nil {
		return nil, err
	}
	return intentResultFromStripe(result), nil
}

// CancelIntent 取消 PaymentIntent
func (p *StripeProvider) CancelIntent(ctx context.Context, intentID string) error {
	_, err := stripe.CancelIntent(ctx, p.cfg, intentID)
	return err
}

func intentResultFromStripe(result *stripe.IntentResult) *PaymentIntentResult {
	return &PaymentIntentResult{
		IntentID:     result.PaymentIntentID,
		ClientSecret: result.ClientSecret,
		Status:       result.Status,
		Amount:       result.Amount,
		Currency:     result.Currency,
	}
}
