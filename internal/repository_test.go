package internal_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/DrGermanius/shoutout/internal"
	"github.com/DrGermanius/shoutout/internal/model"
	"github.com/DrGermanius/shoutout/internal/order"
)

var orderColumns = []string{
	"id", "number", "customer_id", "creator_id", "occasion", "recipient_name", "instructions", "amount", "status",
	"creator_response_time", "rush_order", "ordered_at", "deliver_by", "accepted_at", "recording_started_at",
	"processing_started_at", "completed_at", "cancelled_at", "video_duration_seconds", "refund_amount",
}

func orderRow(number string, acceptedAt interface{}) []driver.Value {
	return []driver.Value{
		1, number, 1, "7", "birthday", "Sam", "Wish Sam a happy birthday", "50", "accepted",
		"24h", false, now, now.Add(24 * time.Hour), acceptedAt, nil,
		nil, nil, nil, 0, "0",
	}
}

var _ = Describe("Repository", func() {
	var (
		repo internal.IRepository
		mock sqlmock.Sqlmock
		ctx  = context.Background()
	)
	BeforeEach(func() {
		db, m, err := sqlmock.New()
		Expect(err).ShouldNot(HaveOccurred())

		mock = m
		logger, err := zap.NewDevelopment()
		Expect(err).ShouldNot(HaveOccurred())

		repo = internal.Repository{
			Conn:   db,
			Logger: logger.Sugar(),
		}
	})
	AfterEach(func() {
		err := mock.ExpectationsWereMet()
		Expect(err).ShouldNot(HaveOccurred())
	})

	Context("Users", func() {
		It("Register without error", func() {
			mock.ExpectQuery("INSERT INTO users \\(login, password\\) VALUES \\(\\$1, \\$2\\) RETURNING id").
				WithArgs("login", "hash").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

			id, err := repo.Register(ctx, "login", "hash")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(id).To(Equal(5))
		})
		It("IsUserExist without error", func() {
			mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM users WHERE login = \\$1\\)").
				WithArgs("login").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

			exist, err := repo.IsUserExist(ctx, "login")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(exist).To(BeTrue())
		})
		It("CheckCredentials with unknown user", func() {
			mock.ExpectQuery("SELECT id FROM users WHERE login = \\$1 AND password = \\$2").
				WithArgs("login", "hash").WillReturnRows(sqlmock.NewRows([]string{"id"}))

			_, err := repo.CheckCredentials(ctx, "login", "hash")
			Expect(err).Should(Equal(internal.ErrInvalidCredentials))
		})
	})

	Context("Orders", func() {
		It("CreateOrder without error", func() {
			o := model.Order{
				Number:              "ORD-2024-1",
				CustomerID:          1,
				CreatorID:           "7",
				Occasion:            "birthday",
				RecipientName:       "Sam",
				Instructions:        "Wish Sam a happy birthday",
				Amount:              decimal.NewFromInt(50),
				Status:              model.OrderStatusPending,
				CreatorResponseTime: "24h",
				OrderedAt:           now,
				DeliverBy:           now.Add(24 * time.Hour),
			}

			mock.ExpectQuery("INSERT INTO orders (.+) VALUES (.+) RETURNING id").
				WithArgs(o.Number, o.CustomerID, o.CreatorID, o.Occasion, o.RecipientName, o.Instructions, o.Amount, "pending",
					o.CreatorResponseTime, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

			id, err := repo.CreateOrder(ctx, o)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(id).To(Equal(3))
		})
		It("CreateOrder with error", func() {
			mock.ExpectQuery("INSERT INTO orders (.+) VALUES (.+)").
				WillReturnError(errors.New("some error"))

			_, err := repo.CreateOrder(ctx, model.Order{})
			Expect(err).Should(HaveOccurred())
		})
		It("CreateOrder with a taken number", func() {
			mock.ExpectQuery("INSERT INTO orders (.+) VALUES (.+)").
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "orders_number_key"})

			_, err := repo.CreateOrder(ctx, model.Order{})
			Expect(err).Should(Equal(internal.ErrOrderNumberTaken))
		})
		It("GetOrderByNumber without error", func() {
			number := "ORD-2024-1"
			accepted := now.Add(time.Hour)

			mock.ExpectQuery("SELECT (.+) FROM orders WHERE number = \\$1").
				WithArgs(number).WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(orderRow(number, accepted)...)).RowsWillBeClosed()

			o, err := repo.GetOrderByNumber(ctx, number)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(o.Number).To(Equal(number))
			Expect(o.Status).To(Equal(model.OrderStatusAccepted))
			Expect(o.Amount.Equal(decimal.NewFromInt(50))).To(BeTrue())
			Expect(*o.AcceptedAt).To(Equal(accepted))
			Expect(o.RecordingStartedAt).To(BeNil())
		})
		It("GetOrderByNumber with no rows", func() {
			mock.ExpectQuery("SELECT (.+) FROM orders WHERE number = \\$1").
				WithArgs("x").WillReturnRows(sqlmock.NewRows(orderColumns))

			_, err := repo.GetOrderByNumber(ctx, "x")
			Expect(err).Should(Equal(internal.ErrNoRecords))
		})
		It("GetOrdersByCustomer without error", func() {
			mock.ExpectQuery("SELECT (.+) FROM orders WHERE customer_id = \\$1 ORDER BY ordered_at DESC").
				WithArgs(1).WillReturnRows(sqlmock.NewRows(orderColumns).
				AddRow(orderRow("ORD-2024-1", nil)...).
				AddRow(orderRow("ORD-2024-2", nil)...)).RowsWillBeClosed()

			orders, err := repo.GetOrdersByCustomer(ctx, 1)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(orders).To(HaveLen(2))
			Expect(orders[1].AcceptedAt).To(BeNil())
		})
		It("GetOrdersByCustomer with error", func() {
			mock.ExpectQuery("SELECT (.+) FROM orders WHERE customer_id = \\$1").
				WithArgs(1).WillReturnError(errors.New("some error"))

			_, err := repo.GetOrdersByCustomer(ctx, 1)
			Expect(err).Should(HaveOccurred())
		})
		It("GetOrdersByCreator without error", func() {
			mock.ExpectQuery("SELECT (.+) FROM orders WHERE creator_id = \\$1 ORDER BY deliver_by ASC").
				WithArgs("7").WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(orderRow("ORD-2024-1", nil)...))

			orders, err := repo.GetOrdersByCreator(ctx, "7")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(orders).To(HaveLen(1))
		})
	})

	Context("Lifecycle", func() {
		const (
			acceptGuard  = "UPDATE orders SET status = \\$1, accepted_at = \\$2 WHERE number = \\$3 AND status = \\$4 AND cancelled_at IS NULL AND accepted_at IS NULL"
			cancelGuard  = "UPDATE orders SET status = \\$1, cancelled_at = \\$2, refund_amount = \\$3 WHERE number = \\$4 AND status = \\$5 AND cancelled_at IS NULL AND completed_at IS NULL AND processing_started_at IS NULL"
			refundInsert = "INSERT INTO refunds (.+) VALUES (.+)"
		)

		It("RecordEvent stamps the event column", func() {
			mock.ExpectExec(acceptGuard).
				WithArgs("accepted", now, "ORD-2024-1", "pending").WillReturnResult(sqlmock.NewResult(0, 1))

			err := repo.RecordEvent(ctx, "ORD-2024-1", model.EventAccept, now, 0)
			Expect(err).ShouldNot(HaveOccurred())
		})
		It("RecordEvent stores the video duration on processing", func() {
			mock.ExpectExec("UPDATE orders SET status = \\$1, processing_started_at = \\$2, video_duration_seconds = \\$5 WHERE number = \\$3 AND status = \\$4 AND cancelled_at IS NULL AND processing_started_at IS NULL").
				WithArgs("processing", now, "ORD-2024-1", "recording", 90).WillReturnResult(sqlmock.NewResult(0, 1))

			err := repo.RecordEvent(ctx, "ORD-2024-1", model.EventStartProcessing, now, 90)
			Expect(err).ShouldNot(HaveOccurred())
		})
		It("RecordEvent leaves a stamped or cancelled order alone", func() {
			mock.ExpectExec(acceptGuard).
				WithArgs("accepted", now, "ORD-2024-1", "pending").WillReturnResult(sqlmock.NewResult(0, 0))

			err := repo.RecordEvent(ctx, "ORD-2024-1", model.EventAccept, now, 0)
			Expect(err).Should(Equal(order.ErrInvalidTransition))
		})
		It("RecordEvent with unknown event", func() {
			err := repo.RecordEvent(ctx, "ORD-2024-1", "reject", now, 0)
			Expect(err).Should(HaveOccurred())
		})
		It("CancelOrder without error", func() {
			o := model.Order{Number: "ORD-2024-1", Status: model.OrderStatusAccepted, CancelledAt: at(now)}
			r := model.Refund{
				OrderNumber:    o.Number,
				UserID:         1,
				Amount:         decimal.NewFromInt(45),
				Reason:         model.ReasonCustomerRequest,
				IdempotencyKey: "6f1c3c0e-7f0b-4e55-9a38-0c1f7e9b2d11",
				ProcessedAt:    now,
			}

			mock.ExpectBegin()
			mock.ExpectExec(cancelGuard).
				WithArgs("cancelled", sqlmock.AnyArg(), r.Amount, o.Number, "accepted").WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(refundInsert).
				WithArgs(o.Number, 1, r.Amount, "customer_request", r.IdempotencyKey, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectCommit()

			err := repo.CancelOrder(ctx, o, r)
			Expect(err).ShouldNot(HaveOccurred())
		})
		It("CancelOrder records nothing when another write got there first", func() {
			o := model.Order{Number: "ORD-2024-1", Status: model.OrderStatusAccepted, CancelledAt: at(now)}

			mock.ExpectBegin()
			mock.ExpectExec(cancelGuard).
				WithArgs("cancelled", sqlmock.AnyArg(), sqlmock.AnyArg(), o.Number, "accepted").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectRollback()

			err := repo.CancelOrder(ctx, o, model.Refund{OrderNumber: o.Number, Amount: decimal.NewFromInt(45)})
			Expect(err).Should(Equal(internal.ErrNotCancellable))
		})
		It("CancelOrder with error", func() {
			o := model.Order{Number: "ORD-2024-1", Status: model.OrderStatusPending, CancelledAt: at(now)}

			mock.ExpectBegin()
			mock.ExpectExec(cancelGuard).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(refundInsert).
				WillReturnError(errors.New("some error"))
			mock.ExpectRollback()

			err := repo.CancelOrder(ctx, o, model.Refund{OrderNumber: o.Number})
			Expect(err).Should(HaveOccurred())
		})
		It("MarkRefunded without error", func() {
			mock.ExpectExec("UPDATE orders SET status = \\$1 WHERE number = \\$2 AND status = \\$3").
				WithArgs("refunded", "ORD-2024-1", "cancelled").WillReturnResult(sqlmock.NewResult(0, 1))

			err := repo.MarkRefunded(ctx, "ORD-2024-1")
			Expect(err).ShouldNot(HaveOccurred())
		})
		It("MarkRefunded with error", func() {
			mock.ExpectExec("UPDATE orders SET status = \\$1 WHERE number = \\$2 AND status = \\$3").
				WithArgs("refunded", "ORD-2024-1", "cancelled").WillReturnError(errors.New("some error"))

			err := repo.MarkRefunded(ctx, "ORD-2024-1")
			Expect(err).Should(HaveOccurred())
		})
		It("GetPendingRefunds without error", func() {
			key := "6f1c3c0e-7f0b-4e55-9a38-0c1f7e9b2d11"
			mock.ExpectQuery("SELECT (.+) FROM refunds r JOIN orders o ON o.number = r.order_number WHERE o.status = \\$1 AND r.amount > 0 ORDER BY r.processed_at LIMIT \\$2").
				WithArgs("cancelled", 50).
				WillReturnRows(sqlmock.NewRows([]string{"order_number", "user_id", "amount", "reason", "idempotency_key", "processed_at"}).
					AddRow("ORD-2024-1", 1, "45", "customer_request", key, now))

			refunds, err := repo.GetPendingRefunds(ctx, 50)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(refunds).To(HaveLen(1))
			Expect(refunds[0].IdempotencyKey).To(Equal(key))
			Expect(refunds[0].Reason).To(Equal(model.ReasonCustomerRequest))
			Expect(refunds[0].Amount.Equal(decimal.NewFromInt(45))).To(BeTrue())
		})
		It("GetPendingRefunds with error", func() {
			mock.ExpectQuery("SELECT (.+) FROM refunds").WillReturnError(errors.New("some error"))

			_, err := repo.GetPendingRefunds(ctx, 50)
			Expect(err).Should(HaveOccurred())
		})
	})
})
