package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yurkevych/seatstore/internal/cart"
	"github.com/yurkevych/seatstore/internal/domain"
	"github.com/yurkevych/seatstore/internal/gateway"
	redisrepo "github.com/yurkevych/seatstore/internal/repository/redis"
	"github.com/yurkevych/seatstore/internal/service"
	"github.com/yurkevych/seatstore/internal/service/catalog"
	"github.com/yurkevych/seatstore/internal/service/checkout"
	"github.com/yurkevych/seatstore/internal/service/orders"
	"github.com/yurkevych/seatstore/internal/service/settlement"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	carts *cart.Registry,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.GET("/products/:id", handleGetProduct(svcs))
	r.GET("/events/:id", handleGetEvent(svcs))
	r.GET("/events/:id/seats", handleListEventSeats(svcs))
	r.GET("/seats/:id/availability", handleSeatAvailability(svcs))

	r.GET("/orders/:id", handleGetOrder(svcs))

	// Cart API
	cartGroup := r.Group("/carts/:buyerID")
	{
		cartGroup.GET("", handleGetCart(carts))
		cartGroup.POST("/products", handleAddProductLine(svcs, carts))
		cartGroup.PUT("/products/:productID", handleUpdateQuantity(svcs, carts))
		cartGroup.POST("/seats", handleAddSeatLine(svcs, carts))
		cartGroup.DELETE("/lines/:kind/:id", handleRemoveLine(carts))
		cartGroup.POST("/checkout", handleCheckout(svcs, carts, idem))
	}

	// Gateway webhook
	r.POST("/payments/callback", handleGatewayCallback(svcs))

	// Admin-API
	// TODO: add admin middleware
	admin := r.Group("/admin")
	{
		admin.POST("/products", handleCreateProduct(svcs))
		admin.POST("/events", handleCreateEvent(svcs))
		admin.POST("/events/:id/seats", handleAddEventSeats(svcs))
		admin.POST("/coupons", handleCreateCoupon(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Get product
// @Param    id  path  int  true  "Product ID"
// @Success  200  {object}  domain.Product
// @Failure  404  {object}  ErrorResponse
// @Router   /products/{id} [get]
func handleGetProduct(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		p, err := svcs.Catalog.GetProduct(c.Request.Context(), productID)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, p, "public, max-age=60", true)
	}
}

// @Summary  Get event
// @Param    id  path  int  true  "Event ID"
// @Success  200  {object}  domain.Event
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{id} [get]
func handleGetEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		e, err := svcs.Catalog.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, e, "public, max-age=60", true)
	}
}

// @Summary  List event seats
// @Param    id     path   int     true  "Event ID"
// @Param    only   query  string  false "available"
// @Param    limit  query  int     false "page size"
// @Param    offset query  int     false "offset"
// @Success  200  {array}   domain.Seat
// @Router   /events/{id}/seats [get]
func handleListEventSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		onlyAvailable := false
		if c.Query("only") == "available" ||
			c.Query("only_available") == "true" ||
			c.Query("onlyAvailable") == "true" {
			onlyAvailable = true
		}
		limit := parseIntDefault(c.Query("limit"), 100)
		offset := parseIntDefault(c.Query("offset"), 0)

		seats, err := svcs.Catalog.ListEventSeats(
			c.Request.Context(),
			eventID,
			onlyAvailable,
			limit,
			offset,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 15s, seat maps churn quickly
		writeJSONWithCache(c, http.StatusOK, seats, "public, max-age=15", true)
	}
}

// @Summary  Check one seat's availability
// @Param    id  path  int  true  "Seat ID"
// @Success  200  {object}  SeatAvailabilityResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /seats/{id}/availability [get]
func handleSeatAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		seatID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		available, err := svcs.Catalog.SeatAvailability(c.Request.Context(), seatID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, SeatAvailabilityResponse{
			SeatID:    seatID,
			Available: available,
		})
	}
}

// @Summary  Get order with lines
// @Param    id  path  string  true  "Order ID (uuid)"
// @Success  200 {object} domain.OrderWithLines
// @Failure  404 {object} ErrorResponse
// @Router   /orders/{id} [get]
func handleGetOrder(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("id")
		o, err := svcs.Orders.GetOrderWithLines(c.Request.Context(), orderID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary  Get cart contents
// @Param    buyerID  path  int  true  "Buyer ID"
// @Success  200 {object} CartResponse
// @Router   /carts/{buyerID} [get]
func handleGetCart(carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyerID, ok := parseInt64Param(c, "buyerID")
		if !ok {
			return
		}
		ct := carts.Cart(buyerID)
		live, expired := ct.Lines()
		c.JSON(http.StatusOK, CartResponse{
			BuyerID:       buyerID,
			Lines:         live,
			ExpiredLines:  expired,
			SubtotalCents: ct.SubtotalCents(),
		})
	}
}

// @Summary  Add a product line to the cart
// @Param    buyerID  path  int  true  "Buyer ID"
// @Param    req body  AddProductLineRequest true "payload"
// @Success  200 {object} CartResponse
// @Failure  404 {object} ErrorResponse "product not found"
// @Router   /carts/{buyerID}/products [post]
func handleAddProductLine(svcs *service.Services, carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyerID, ok := parseInt64Param(c, "buyerID")
		if !ok {
			return
		}
		var req AddProductLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		p, err := svcs.Catalog.GetProduct(c.Request.Context(), req.ProductID)
		if err != nil {
			respondErr(c, err)
			return
		}
		ct := carts.Cart(buyerID)
		if err := ct.AddProduct(p, req.Quantity); err != nil {
			respondErr(c, err)
			return
		}
		respondCart(c, buyerID, ct)
	}
}

// @Summary  Set a product line's quantity (0 removes the line)
// @Param    buyerID    path  int  true  "Buyer ID"
// @Param    productID  path  int  true  "Product ID"
// @Param    req body  UpdateQuantityRequest true "payload"
// @Success  200 {object} CartResponse
// @Router   /carts/{buyerID}/products/{productID} [put]
func handleUpdateQuantity(svcs *service.Services, carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyerID, ok := parseInt64Param(c, "buyerID")
		if !ok {
			return
		}
		productID, ok := parseInt64Param(c, "productID")
		if !ok {
			return
		}
		var req UpdateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		stock := -1
		if req.Quantity > 0 {
			p, err := svcs.Catalog.GetProduct(c.Request.Context(), productID)
			if err != nil {
				respondErr(c, err)
				return
			}
			stock = p.Stock
		}
		ct := carts.Cart(buyerID)
		if err := ct.UpdateProductQuantity(productID, req.Quantity, stock); err != nil {
			respondErr(c, err)
			return
		}
		respondCart(c, buyerID, ct)
	}
}

// @Summary  Hold a seat in the cart
// @Param    buyerID  path  int  true  "Buyer ID"
// @Param    req body  AddSeatLineRequest true "payload"
// @Success  200 {object} CartResponse
// @Failure  409 {object} ErrorResponse "seat unavailable / already held"
// @Router   /carts/{buyerID}/seats [post]
func handleAddSeatLine(svcs *service.Services, carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyerID, ok := parseInt64Param(c, "buyerID")
		if !ok {
			return
		}
		var req AddSeatLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		seat, err := svcs.Catalog.GetSeat(c.Request.Context(), req.SeatID)
		if err != nil {
			respondErr(c, err)
			return
		}
		available, err := svcs.Catalog.SeatAvailability(c.Request.Context(), req.SeatID)
		if err != nil {
			respondErr(c, err)
			return
		}
		if !available {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "seat unavailable"})
			return
		}
		ttl := time.Duration(req.TTLSec) * time.Second
		ct := carts.Cart(buyerID)
		if err := ct.AddSeatHold(seat, req.UnitCents, ttl); err != nil {
			respondErr(c, err)
			return
		}
		respondCart(c, buyerID, ct)
	}
}

// @Summary  Remove a cart line
// @Param    buyerID  path  int     true  "Buyer ID"
// @Param    kind     path  string  true  "product or seat"
// @Param    id       path  int     true  "product id / seat id"
// @Success  200 {object} CartResponse
// @Failure  404 {object} ErrorResponse
// @Router   /carts/{buyerID}/lines/{kind}/{id} [delete]
func handleRemoveLine(carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyerID, ok := parseInt64Param(c, "buyerID")
		if !ok {
			return
		}
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		kind := domain.LineKind(c.Param("kind"))
		if kind != domain.LineProduct && kind != domain.LineSeat {
			badRequest(c, "invalid kind")
			return
		}
		ct := carts.Cart(buyerID)
		if err := ct.RemoveLine(kind, id); err != nil {
			respondErr(c, err)
			return
		}
		respondCart(c, buyerID, ct)
	}
}

// @Summary  Check out the cart (idempotent)
// @Param    buyerID  path  int  true  "Buyer ID"
// @Param    req body  CheckoutRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} CheckoutResponse
// @Failure  400 {object} ErrorResponse "empty cart"
// @Failure  409 {object} ErrorResponse "seat unavailable / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Failure  502 {object} ErrorResponse "payment gateway unavailable"
// @Router   /carts/{buyerID}/checkout [post]
func handleCheckout(
	svcs *service.Services,
	carts *cart.Registry,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyerID, ok := parseInt64Param(c, "buyerID")
		if !ok {
			return
		}
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemCheckout(buyerID, idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusCreated,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusCreated,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		ct := carts.Cart(buyerID)
		live, _ := ct.Lines()
		rlKey := "ip:" + c.ClientIP()

		res, err := svcs.Checkout.Checkout(c.Request.Context(), checkout.Input{
			BuyerID:    buyerID,
			Lines:      live,
			CouponCode: req.CouponCode,
		}, rlKey)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			if errors.Is(err, checkout.ErrRateLimited) {
				c.Header("Retry-After", "60")
				c.JSON(
					http.StatusTooManyRequests,
					ErrorResponse{Error: err.Error()},
				)
				return
			}
			respondErr(c, err)
			return
		}

		carts.Drop(buyerID)

		status := string(domain.OrderPending)
		if res.Settlement != nil {
			status = string(res.Settlement.Status)
		}
		resp := CheckoutResponse{
			OrderID:     res.OrderID.String(),
			Status:      status,
			TotalCents:  res.TotalCents,
			RedirectURL: res.RedirectURL,
		}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Payment gateway settlement webhook
// @Param    req body  GatewayCallbackRequest true "payload"
// @Success  200 {object} GatewayCallbackResponse
// @Failure  404 {object} ErrorResponse "unknown reference"
// @Failure  409 {object} ErrorResponse "order no longer settleable"
// @Router   /payments/callback [post]
func handleGatewayCallback(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GatewayCallbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svcs.Settlement.HandleGatewayCallback(
			c.Request.Context(),
			req.Reference,
			req.Status,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, GatewayCallbackResponse{
			OrderID: res.OrderID.String(),
			Status:  string(res.Status),
		})
	}
}

// @Summary  Create product
// @Param    req body  CreateProductRequest true "payload"
// @Success  201 {object} CreateProductResponse
// @Router   /admin/products [post]
func handleCreateProduct(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		id, err := svcs.Catalog.CreateProduct(c.Request.Context(), &domain.Product{
			Name:      req.Name,
			UnitCents: req.UnitCents,
			Stock:     req.Stock,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateProductResponse{ProductID: id})
	}
}

// @Summary  Create event and its seats
// @Param    req body  CreateEventRequest true "payload"
// @Success  201 {object} CreateEventResponse
// @Failure  409 {object} ErrorResponse "seats conflict"
// @Router   /admin/events [post]
func handleCreateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		starts, err := parseRFC3339(req.StartsAt)
		if err != nil {
			badRequest(c, "invalid starts_at (RFC3339)")
			return
		}
		ends, err := parseRFC3339(req.EndsAt)
		if err != nil {
			badRequest(c, "invalid ends_at (RFC3339)")
			return
		}
		var seats []domain.Seat
		for _, s := range req.Seats {
			for i := 0; i < s.Count; i++ {
				seats = append(seats, domain.Seat{Tier: s.Tier})
			}
		}
		id, err := svcs.Catalog.CreateEventWithSeats(
			c.Request.Context(),
			&domain.Event{Title: req.Title, Starts: starts, Ends: ends},
			seats,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateEventResponse{EventID: id})
	}
}

// @Summary  Batch create seats for an event
// @Param    id  path  int  true  "Event ID"
// @Param    req body  AddEventSeatsRequest true "payload"
// @Success  201 {object} map[string]int
// @Failure  404 {object} ErrorResponse "event not found"
// @Failure  409 {object} ErrorResponse "seats conflict"
// @Router   /admin/events/{id}/seats [post]
func handleAddEventSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req AddEventSeatsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		var seats []domain.Seat
		for _, s := range req.Seats {
			for i := 0; i < s.Count; i++ {
				seats = append(seats, domain.Seat{EventID: eventID, Tier: s.Tier})
			}
		}
		if err := svcs.Catalog.AddEventSeats(c.Request.Context(), eventID, seats); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"created": len(seats)})
	}
}

// @Summary  Create coupon
// @Param    req body  CreateCouponRequest true "payload"
// @Success  201 {object} map[string]string
// @Failure  409 {object} ErrorResponse "code already exists"
// @Router   /admin/coupons [post]
func handleCreateCoupon(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		d := domain.Discount{
			Code:     req.Code,
			Percent:  req.Percent,
			TierOnly: domain.MembershipTier(req.TierOnly),
		}
		if req.ValidFrom != "" {
			from, err := parseRFC3339(req.ValidFrom)
			if err != nil {
				badRequest(c, "invalid valid_from (RFC3339)")
				return
			}
			d.ValidFrom = from
		}
		if req.ValidTo != "" {
			to, err := parseRFC3339(req.ValidTo)
			if err != nil {
				badRequest(c, "invalid valid_to (RFC3339)")
				return
			}
			d.ValidTo = to
		}
		if err := svcs.Catalog.CreateCoupon(c.Request.Context(), &d); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"code": d.Code})
	}
}

// --- Helpers ---

func respondCart(c *gin.Context, buyerID int64, ct *cart.Cart) {
	live, expired := ct.Lines()
	c.JSON(http.StatusOK, CartResponse{
		BuyerID:       buyerID,
		Lines:         live,
		ExpiredLines:  expired,
		SubtotalCents: ct.SubtotalCents(),
	})
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// cart
	case errors.Is(err, cart.ErrLineNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "cart line not found"})
		return
	case errors.Is(err, cart.ErrSeatAlreadyHeld):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seat already held in cart"})
		return
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "quantity must be positive"})
		return
	// checkout service
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cart is empty"})
		return
	case errors.Is(err, checkout.ErrSeatUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, checkout.ErrBuyerNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "buyer not found"})
		return
	case errors.Is(err, checkout.ErrRateLimited):
		c.Header("Retry-After", "60")
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: err.Error()})
		return
	// settlement service
	case errors.Is(err, settlement.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "order not found"})
		return
	case errors.Is(err, settlement.ErrNotSettleable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "order can no longer be settled"})
		return
	case errors.Is(err, settlement.ErrInsufficientStock):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, settlement.ErrSeatConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, settlement.ErrHoldExpired):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	// orders service
	case errors.Is(err, orders.ErrInvalidOrderID):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order id"})
		return
	case errors.Is(err, orders.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "order not found"})
		return
	// catalog service
	case errors.Is(err, catalog.ErrProductNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "product not found"})
		return
	case errors.Is(err, catalog.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, catalog.ErrSeatNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "seat not found"})
		return
	case errors.Is(err, catalog.ErrCouponConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "coupon already exists"})
		return
	case errors.Is(err, catalog.ErrSeatsConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seats conflict"})
		return
	// payment gateway boundary
	case errors.Is(err, gateway.ErrGateway):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "payment gateway unavailable"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
