package internal

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DrGermanius/shoutout/internal/model"
	"github.com/DrGermanius/shoutout/internal/order"
)

const (
	tokenTTL         = 72 * time.Hour
	numberAttempts   = 2
	refundRetryBatch = 50
)

type IService interface {
	Register(context.Context, string, string) (string, error)
	Login(context.Context, string, string) (string, error)
	GetJWTToken(string) (string, error)
	CreateOrder(context.Context, int, model.OrderRequest) (model.OrderView, error)
	GetOrders(context.Context, int) ([]model.OrderView, error)
	GetOrder(context.Context, int, string) (model.OrderView, error)
	GetCreatorOrders(context.Context, int) ([]model.OrderView, error)
	AdvanceOrder(context.Context, int, string, model.EventInput) (model.OrderView, error)
	CancelOrder(context.Context, int, string) (model.RefundOutput, error)
}

// NewService wires the order rules to storage. payments may be nil, in which
// case refunds are only recorded.
func NewService(repository IRepository, payments IPaymentClient, secret string, logger *zap.SugaredLogger, clock order.Clock) *Service {
	return &Service{
		Repository: repository,
		payments:   payments,
		engine:     order.NewEngine(clock),
		secret:     secret,
		logger:     logger,
	}
}

type Service struct {
	Repository IRepository
	payments   IPaymentClient
	engine     *order.Engine
	secret     string
	logger     *zap.SugaredLogger
}

func (s Service) Register(ctx context.Context, login, password string) (string, error) {
	exist, err := s.Repository.IsUserExist(ctx, login)
	if err != nil {
		return "", err
	}

	if exist {
		return "", ErrLoginIsAlreadyTaken
	}

	h := GetHash(password)
	id, err := s.Repository.Register(ctx, login, h)
	if err != nil {
		return "", err
	}

	return s.GetJWTToken(strconv.Itoa(id))
}

func (s Service) Login(ctx context.Context, login, password string) (string, error) {
	h := GetHash(password)
	id, err := s.Repository.CheckCredentials(ctx, login, h)
	if err != nil {
		return "", err
	}

	return s.GetJWTToken(strconv.Itoa(id))
}

func (s Service) GetJWTToken(uid string) (string, error) {
	claims := jwt.MapClaims{
		"id":  uid,
		"exp": time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	t, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", err
	}

	return t, nil
}

func (s Service) CreateOrder(ctx context.Context, uid int, req model.OrderRequest) (model.OrderView, error) {
	if err := order.ValidateOrderRequest(req); err != nil {
		return model.OrderView{}, err
	}

	now := s.engine.Now()
	o := model.Order{
		CustomerID:          uid,
		CreatorID:           req.CreatorID,
		Occasion:            req.Occasion,
		RecipientName:       req.RecipientName,
		Instructions:        req.Instructions,
		Amount:              req.Amount,
		Status:              model.OrderStatusPending,
		CreatorResponseTime: req.CreatorResponseTime,
		RushOrder:           req.RushOrder,
		OrderedAt:           now,
		DeliverBy:           s.engine.DeliveryTime(req.CreatorResponseTime, req.RushOrder),
	}

	var err error
	for i := 0; i < numberAttempts; i++ {
		o.Number = s.engine.OrderNumber(order.DefaultNumberPrefix)
		o.ID, err = s.Repository.CreateOrder(ctx, o)
		if !errors.Is(err, ErrOrderNumberTaken) {
			break
		}
		s.logger.Warnf("CreateOrder: number %s is taken, generating another", o.Number)
	}
	if err != nil {
		s.logger.Errorf("CreateOrder error: %s", err.Error())
		return model.OrderView{}, err
	}

	s.logger.Infow("order created", "number", o.Number, "customer", uid, "creator", o.CreatorID, "deliverBy", o.DeliverBy)
	return s.engine.Describe(o), nil
}

func (s Service) GetOrders(ctx context.Context, uid int) ([]model.OrderView, error) {
	orders, err := s.Repository.GetOrdersByCustomer(ctx, uid)
	if err != nil {
		return nil, err
	}

	return s.describeAll(orders)
}

func (s Service) GetCreatorOrders(ctx context.Context, uid int) ([]model.OrderView, error) {
	orders, err := s.Repository.GetOrdersByCreator(ctx, strconv.Itoa(uid))
	if err != nil {
		return nil, err
	}

	return s.describeAll(orders)
}

func (s Service) describeAll(orders []model.Order) ([]model.OrderView, error) {
	if len(orders) == 0 {
		return nil, ErrNoRecords
	}

	views := make([]model.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, s.engine.Describe(o))
	}
	return views, nil
}

func (s Service) GetOrder(ctx context.Context, uid int, number string) (model.OrderView, error) {
	o, _, err := s.getOwnOrder(ctx, uid, number)
	if err != nil {
		return model.OrderView{}, err
	}

	return s.engine.Describe(o), nil
}

func (s Service) AdvanceOrder(ctx context.Context, uid int, number string, in model.EventInput) (model.OrderView, error) {
	o, isCreator, err := s.getOwnOrder(ctx, uid, number)
	if err != nil {
		return model.OrderView{}, err
	}
	if !isCreator {
		return model.OrderView{}, ErrForbidden
	}

	now := s.engine.Now()
	o, err = order.Apply(o, in.Event, now)
	if err != nil {
		return model.OrderView{}, err
	}
	if in.Event == model.EventStartProcessing {
		o.VideoDurationSeconds = in.VideoDurationSeconds
	}

	err = s.Repository.RecordEvent(ctx, number, in.Event, now, in.VideoDurationSeconds)
	if err != nil {
		s.logger.Errorf("AdvanceOrder error: %s", err.Error())
		return model.OrderView{}, err
	}

	return s.engine.Describe(o), nil
}

// CancelOrder cancels on behalf of whoever asks. The creator backing out
// refunds in full; the customer gets the share the order's progress allows.
func (s Service) CancelOrder(ctx context.Context, uid int, number string) (model.RefundOutput, error) {
	o, isCreator, err := s.getOwnOrder(ctx, uid, number)
	if err != nil {
		return model.RefundOutput{}, err
	}

	if !s.engine.CanCancel(o) {
		return model.RefundOutput{}, ErrNotCancellable
	}
	now := s.engine.Now()

	reason := model.ReasonCustomerRequest
	if isCreator {
		reason = model.ReasonCreatorCancelled
	}

	refund := model.Refund{
		OrderNumber:    o.Number,
		UserID:         o.CustomerID,
		Amount:         order.CalculateRefundAmount(o, reason, o.Amount),
		Reason:         reason,
		IdempotencyKey: uuid.NewString(),
		ProcessedAt:    now,
	}
	o.CancelledAt = &now

	err = s.Repository.CancelOrder(ctx, o, refund)
	if errors.Is(err, ErrNotCancellable) {
		return model.RefundOutput{}, err
	}
	if err != nil {
		s.logger.Errorf("CancelOrder error: %s", err.Error())
		return model.RefundOutput{}, err
	}

	out := model.RefundOutput{OrderNumber: o.Number, Amount: refund.Amount, Reason: reason}
	if s.payments == nil || refund.Amount.IsZero() {
		return out, nil
	}

	// the cancellation stands even if the payment system is unavailable,
	// RetryRefunds picks the refund up later
	err = s.payments.Refund(ctx, refund)
	if err != nil {
		s.logger.Errorf("CancelOrder refund error: %s", err.Error())
		return out, nil
	}

	err = s.Repository.MarkRefunded(ctx, o.Number)
	if err != nil {
		s.logger.Errorf("CancelOrder error: %s", err.Error())
		return out, nil
	}

	out.Refunded = true
	return out, nil
}

// RetryRefunds resends refunds the payment system has not confirmed and
// returns how many went through. A rate-limited answer ends the pass.
func (s Service) RetryRefunds(ctx context.Context) (int, error) {
	if s.payments == nil {
		return 0, nil
	}

	refunds, err := s.Repository.GetPendingRefunds(ctx, refundRetryBatch)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, r := range refunds {
		err = s.payments.Refund(ctx, r)
		if errors.Is(err, ErrTooManyRequests) {
			return done, err
		}
		if err != nil {
			s.logger.Errorf("RetryRefunds error for %s: %s", r.OrderNumber, err.Error())
			continue
		}

		err = s.Repository.MarkRefunded(ctx, r.OrderNumber)
		if err != nil {
			s.logger.Errorf("RetryRefunds error for %s: %s", r.OrderNumber, err.Error())
			continue
		}
		done++
	}

	return done, nil
}

// getOwnOrder loads the order and reports whether uid is its creator. Users
// that are neither the customer nor the creator get ErrForbidden.
func (s Service) getOwnOrder(ctx context.Context, uid int, number string) (model.Order, bool, error) {
	if !order.ValidOrderNumber(number) {
		return model.Order{}, false, ErrInvalidOrderNumber
	}

	o, err := s.Repository.GetOrderByNumber(ctx, number)
	if err != nil {
		return model.Order{}, false, err
	}

	isCreator := o.CreatorID == strconv.Itoa(uid)
	if o.CustomerID != uid && !isCreator {
		return model.Order{}, false, ErrForbidden
	}
	return o, isCreator, nil
}

func GetHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return base64.StdEncoding.EncodeToString(h[:])
}
