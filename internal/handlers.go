package internal

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/DrGermanius/shoutout/internal/model"
	"github.com/DrGermanius/shoutout/internal/order"
)

const tokenCookie = "token"

var errInvalidToken = errors.New("invalid token")

type Handlers struct {
	Service IService
	logger  *zap.SugaredLogger
	secret  string
}

func NewHandlers(Service IService, secret string, logger *zap.SugaredLogger) *Handlers {
	return &Handlers{Service: Service, logger: logger, secret: secret}
}

func (h *Handlers) Routes(app *fiber.App) {
	api := app.Group("/api")

	usr := api.Group("/user")
	usr.Post("/login", h.Login)
	usr.Post("/register", h.Register)

	usr.Get("/orders", h.GetOrders)
	usr.Post("/orders", h.CreateOrder)
	usr.Get("/orders/:number", h.GetOrder)
	usr.Post("/orders/:number/cancel", h.CancelOrder)

	creator := api.Group("/creator")
	creator.Get("/orders", h.GetCreatorOrders)
	creator.Post("/orders/:number/events", h.AdvanceOrder)

	api.Get("/statuses/:status", h.GetStatus)
}

func (h *Handlers) Login(c *fiber.Ctx) error {
	var i model.LoginInput

	if err := c.BodyParser(&i); err != nil {
		h.logger.Errorf("Error on login request: %s", err.Error())
		return c.SendStatus(fiber.StatusBadRequest)
	}

	t, err := h.Service.Login(c.Context(), i.Login, i.Password)
	if err != nil {
		h.logger.Errorf("Error on login request: %s", err.Error())
		if errors.Is(err, ErrInvalidCredentials) {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	setAuthCookie(c, t)
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handlers) Register(c *fiber.Ctx) error {
	var i model.LoginInput

	if err := c.BodyParser(&i); err != nil || i.Login == "" || i.Password == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	t, err := h.Service.Register(c.Context(), i.Login, i.Password)
	if err != nil {
		h.logger.Errorf("Error on register request: %s", err.Error())
		if errors.Is(err, ErrLoginIsAlreadyTaken) {
			return c.SendStatus(fiber.StatusConflict)
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	setAuthCookie(c, t)
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handlers) CreateOrder(c *fiber.Ctx) error {
	uid, err := h.getUserIDFromToken(c)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	var req model.OrderRequest
	if err = c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Error on create order request", err)
	}

	v, err := h.Service.CreateOrder(c.Context(), uid, req)
	if err != nil {
		var verr *order.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": verr.Message, "field": verr.Field})
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Error on create order request", err)
	}

	return c.Status(fiber.StatusCreated).JSON(v)
}

func (h *Handlers) GetOrders(c *fiber.Ctx) error {
	uid, err := h.getUserIDFromToken(c)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	orders, err := h.Service.GetOrders(c.Context(), uid)
	if errors.Is(err, ErrNoRecords) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err != nil {
		return h.orderError(c, "Error on get orders request", err)
	}

	return c.Status(fiber.StatusOK).JSON(orders)
}

func (h *Handlers) GetCreatorOrders(c *fiber.Ctx) error {
	uid, err := h.getUserIDFromToken(c)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	orders, err := h.Service.GetCreatorOrders(c.Context(), uid)
	if errors.Is(err, ErrNoRecords) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err != nil {
		return h.orderError(c, "Error on get creator orders request", err)
	}

	return c.Status(fiber.StatusOK).JSON(orders)
}

func (h *Handlers) GetOrder(c *fiber.Ctx) error {
	uid, err := h.getUserIDFromToken(c)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	v, err := h.Service.GetOrder(c.Context(), uid, c.Params("number"))
	if err != nil {
		return h.orderError(c, "Error on get order request", err)
	}

	return c.Status(fiber.StatusOK).JSON(v)
}

func (h *Handlers) AdvanceOrder(c *fiber.Ctx) error {
	uid, err := h.getUserIDFromToken(c)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	var in model.EventInput
	if err = c.BodyParser(&in); err != nil || in.Event == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Error on order event request", err)
	}

	v, err := h.Service.AdvanceOrder(c.Context(), uid, c.Params("number"), in)
	if err != nil {
		return h.orderError(c, "Error on order event request", err)
	}

	return c.Status(fiber.StatusOK).JSON(v)
}

func (h *Handlers) CancelOrder(c *fiber.Ctx) error {
	uid, err := h.getUserIDFromToken(c)
	if err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	r, err := h.Service.CancelOrder(c.Context(), uid, c.Params("number"))
	if err != nil {
		return h.orderError(c, "Error on cancel order request", err)
	}

	return c.Status(fiber.StatusOK).JSON(r)
}

func (h *Handlers) GetStatus(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(order.FormatOrderStatus(model.Status(c.Params("status"))))
}

func (h *Handlers) orderError(c *fiber.Ctx, msg string, err error) error {
	code := statusFor(err)
	if code == fiber.StatusInternalServerError {
		h.logger.Errorf("%s: %s", msg, err.Error())
	}
	return errorResponse(c, code, msg, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNoRecords):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidOrderNumber):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNotCancellable),
		errors.Is(err, order.ErrInvalidTransition):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, code int, msg string, err error) error {
	data := ""
	if err != nil {
		data = err.Error()
	}
	return c.Status(code).JSON(fiber.Map{"status": "error", "message": msg, "data": data})
}

func setAuthCookie(c *fiber.Ctx, token string) {
	cookie := &fiber.Cookie{
		Name:    tokenCookie,
		Value:   token,
		Path:    "/",
		Expires: time.Now().Add(tokenTTL),
	}

	c.Cookie(cookie)
}

func (h *Handlers) getUserIDFromToken(c *fiber.Ctx) (int, error) {
	tokenString := c.Cookies(tokenCookie)
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(h.secret), nil
	})
	if err != nil {
		return 0, err
	}

	id, ok := claims["id"].(string)
	if !ok {
		return 0, errInvalidToken
	}
	return strconv.Atoi(id)
}
