package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	_ "github.com/jackc/pgx/v4/stdlib"
	"go.uber.org/zap"

	"github.com/DrGermanius/shoutout/internal/migrations"
	"github.com/DrGermanius/shoutout/internal/model"
	"github.com/DrGermanius/shoutout/internal/order"
)

const uniqueViolation = "23505"

const (
	orderFields = "id, number, customer_id, creator_id, occasion, recipient_name, instructions, amount, status, " +
		"creator_response_time, rush_order, ordered_at, deliver_by, accepted_at, recording_started_at, " +
		"processing_started_at, completed_at, cancelled_at, video_duration_seconds, refund_amount"
)

// eventColumns is the only source of column names in RecordEvent.
var eventColumns = map[model.Event]string{
	model.EventAccept:          "accepted_at",
	model.EventStartRecording:  "recording_started_at",
	model.EventStartProcessing: "processing_started_at",
	model.EventComplete:        "completed_at",
}

//go:generate mockgen -destination=mock/mock_repository.go -package=mock_internal . IRepository

type IRepository interface {
	Register(context.Context, string, string) (int, error)
	IsUserExist(context.Context, string) (bool, error)
	CheckCredentials(context.Context, string, string) (int, error)
	CreateOrder(context.Context, model.Order) (int, error)
	GetOrderByNumber(context.Context, string) (model.Order, error)
	GetOrdersByCustomer(context.Context, int) ([]model.Order, error)
	GetOrdersByCreator(context.Context, string) ([]model.Order, error)
	RecordEvent(context.Context, string, model.Event, time.Time, int) error
	CancelOrder(context.Context, model.Order, model.Refund) error
	MarkRefunded(context.Context, string) error
	GetPendingRefunds(context.Context, int) ([]model.Refund, error)
}

type Repository struct {
	Conn   *sql.DB
	Logger *zap.SugaredLogger
}

func NewRepository(connString string, logger *zap.SugaredLogger) (*Repository, error) {
	conn, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}

	if err = conn.Ping(); err != nil {
		return nil, err
	}

	if err = migrations.Up(conn); err != nil {
		return nil, err
	}

	return &Repository{Conn: conn, Logger: logger}, nil
}

func (r Repository) Register(ctx context.Context, login, password string) (int, error) {
	var id int
	row := r.Conn.QueryRowContext(ctx, "INSERT INTO users (login, password) VALUES ($1, $2) RETURNING id", login, password)

	err := row.Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r Repository) IsUserExist(ctx context.Context, login string) (bool, error) {
	exist := false

	row := r.Conn.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE login = $1)", login)
	err := row.Scan(&exist)
	if err != nil {
		return false, err
	}

	return exist, nil
}

func (r Repository) CheckCredentials(ctx context.Context, login string, password string) (int, error) {
	var id int
	row := r.Conn.QueryRowContext(ctx, "SELECT id FROM users WHERE login = $1 AND password = $2", login, password)

	err := row.Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInvalidCredentials
	}
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r Repository) CreateOrder(ctx context.Context, o model.Order) (int, error) {
	var id int
	row := r.Conn.QueryRowContext(ctx, `INSERT INTO orders (number, customer_id, creator_id, occasion, recipient_name, instructions, amount, status, creator_response_time, rush_order, ordered_at, deliver_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`,
		o.Number, o.CustomerID, o.CreatorID, o.Occasion, o.RecipientName, o.Instructions, o.Amount, string(o.Status),
		o.CreatorResponseTime, o.RushOrder, o.OrderedAt, o.DeliverBy)

	err := row.Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return 0, ErrOrderNumberTaken
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}
	return id, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(s scanner) (model.Order, error) {
	var o model.Order
	err := s.Scan(&o.ID, &o.Number, &o.CustomerID, &o.CreatorID, &o.Occasion, &o.RecipientName, &o.Instructions,
		&o.Amount, &o.Status, &o.CreatorResponseTime, &o.RushOrder, &o.OrderedAt, &o.DeliverBy,
		&o.AcceptedAt, &o.RecordingStartedAt, &o.ProcessingStartedAt, &o.CompletedAt, &o.CancelledAt,
		&o.VideoDurationSeconds, &o.RefundAmount)
	return o, err
}

func (r Repository) GetOrderByNumber(ctx context.Context, number string) (model.Order, error) {
	row := r.Conn.QueryRowContext(ctx, "SELECT "+orderFields+" FROM orders WHERE number = $1", number)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrNoRecords
	}
	if err != nil {
		return model.Order{}, err
	}

	return o, nil
}

func (r Repository) GetOrdersByCustomer(ctx context.Context, uid int) ([]model.Order, error) {
	return r.queryOrders(ctx, "SELECT "+orderFields+" FROM orders WHERE customer_id = $1 ORDER BY ordered_at DESC", uid)
}

func (r Repository) GetOrdersByCreator(ctx context.Context, creatorID string) ([]model.Order, error) {
	return r.queryOrders(ctx, "SELECT "+orderFields+" FROM orders WHERE creator_id = $1 ORDER BY deliver_by ASC", creatorID)
}

func (r Repository) queryOrders(ctx context.Context, query string, arg interface{}) ([]model.Order, error) {
	rows, err := r.Conn.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}

		orders = append(orders, o)
	}

	return orders, rows.Err()
}

// RecordEvent stamps the lifecycle column for e. The update only applies
// while the order still sits in the status e starts from, so timestamps are
// set once and cancelled orders stay untouched. The video duration is only
// stored when processing starts.
func (r Repository) RecordEvent(ctx context.Context, number string, e model.Event, at time.Time, videoDuration int) error {
	column, ok := eventColumns[e]
	if !ok {
		return fmt.Errorf("unknown event %q", e)
	}

	from, to, _ := order.Step(e)
	guard := " WHERE number = $3 AND status = $4 AND cancelled_at IS NULL AND " + column + " IS NULL"

	var (
		res sql.Result
		err error
	)
	if e == model.EventStartProcessing {
		res, err = r.Conn.ExecContext(ctx, "UPDATE orders SET status = $1, "+column+" = $2, video_duration_seconds = $5"+guard,
			string(to), at, number, string(from), videoDuration)
	} else {
		res, err = r.Conn.ExecContext(ctx, "UPDATE orders SET status = $1, "+column+" = $2"+guard,
			string(to), at, number, string(from))
	}
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", e, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return order.ErrInvalidTransition
	}
	return nil
}

// CancelOrder marks o cancelled and stores its refund in one transaction.
// The update is conditional on the status the caller read, so a concurrent
// cancellation or lifecycle event makes it return ErrNotCancellable.
func (r Repository) CancelOrder(ctx context.Context, o model.Order, refund model.Refund) error {
	tx, err := r.Conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE orders SET status = $1, cancelled_at = $2, refund_amount = $3
		WHERE number = $4 AND status = $5 AND cancelled_at IS NULL AND completed_at IS NULL AND processing_started_at IS NULL`,
		string(model.OrderStatusCancelled), o.CancelledAt, refund.Amount, o.Number, string(o.Status))
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotCancellable
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO refunds (order_number, user_id, amount, reason, idempotency_key, processed_at) VALUES ($1, $2, $3, $4, $5, $6)",
		refund.OrderNumber, refund.UserID, refund.Amount, string(refund.Reason), refund.IdempotencyKey, refund.ProcessedAt)
	if err != nil {
		return fmt.Errorf("failed to insert refund: %w", err)
	}

	return tx.Commit()
}

func (r Repository) MarkRefunded(ctx context.Context, number string) error {
	_, err := r.Conn.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE number = $2 AND status = $3",
		string(model.OrderStatusRefunded), number, string(model.OrderStatusCancelled))
	if err != nil {
		return err
	}
	return nil
}

// GetPendingRefunds returns the oldest refunds of cancelled orders the
// payment system has not confirmed yet.
func (r Repository) GetPendingRefunds(ctx context.Context, limit int) ([]model.Refund, error) {
	rows, err := r.Conn.QueryContext(ctx, `SELECT r.order_number, r.user_id, r.amount, r.reason, r.idempotency_key::text, r.processed_at
		FROM refunds r JOIN orders o ON o.number = r.order_number
		WHERE o.status = $1 AND r.amount > 0 ORDER BY r.processed_at LIMIT $2`,
		string(model.OrderStatusCancelled), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refunds []model.Refund
	for rows.Next() {
		var rf model.Refund
		err = rows.Scan(&rf.OrderNumber, &rf.UserID, &rf.Amount, &rf.Reason, &rf.IdempotencyKey, &rf.ProcessedAt)
		if err != nil {
			return nil, err
		}

		refunds = append(refunds, rf)
	}

	return refunds, rows.Err()
}
