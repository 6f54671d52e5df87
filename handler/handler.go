package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"minishop/metrics"
	"minishop/models"
	"minishop/service"
)

// Handler is the HTTP layer that talks to service.Service
type Handler struct {
	svc     service.ServiceInterface
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler instance
func NewHandler(s service.ServiceInterface, logger *zap.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: s, logger: logger, metrics: m}
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	// Catalog
	api.HandleFunc("/products", h.ListProducts).Methods("GET")

	// Cart
	api.HandleFunc("/cart", h.ListCart).Methods("GET")
	api.HandleFunc("/cart", h.AddToCart).Methods("POST")
	api.HandleFunc("/cart/{cartId}", h.UpdateCartQty).Methods("POST")
	api.HandleFunc("/cart/{cartId}", h.SetCartQty).Methods("PUT")
	api.HandleFunc("/cart/{cartId}", h.RemoveFromCart).Methods("DELETE")

	// Checkout
	api.HandleFunc("/checkout", h.Checkout).Methods("POST")

	// Users
	api.HandleFunc("/users", h.RegisterUser).Methods("POST")
	api.HandleFunc("/users/{id}", h.GetUser).Methods("GET")

	r.HandleFunc("/health", h.Health).Methods("GET")
}

// --- request / response shapes ---
type addToCartReq struct {
	ProductID int64 `json:"productId"`
	Qty       int   `json:"qty"`
	UserID    int64 `json:"userId"`
}

type qtyReq struct {
	Qty *int `json:"qty"`
}

type checkoutReq struct {
	CartItems json.RawMessage `json:"cartItems"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	UserID    int64           `json:"userId"`
}

type registerUserReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeServiceErr maps service errors onto status codes.
func (h *Handler) writeServiceErr(w http.ResponseWriter, r *http.Request, err error) {
	var ve *service.ValidationError
	var se *service.StorageError
	switch {
	case errors.As(err, &ve):
		writeErr(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, service.ErrUserNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.As(err, &se):
		h.logger.Error("storage failure",
			zap.String("op", se.Op),
			zap.String("path", r.URL.Path),
			zap.Error(se.Err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "DB error", "detail": se.Err.Error()})
	default:
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}

// pathID returns 0 for an id that is not an integer. No row has id 0, so such
// requests get the same zero-effect or not-found answer as an unknown id.
func pathID(r *http.Request, name string) int64 {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// --- Handler ---

// ListProducts handles GET /api/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.ListProducts(r.Context())
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// ListCart handles GET /api/cart?userId=...
func (h *Handler) ListCart(w http.ResponseWriter, r *http.Request) {
	var userID int64
	if raw := r.URL.Query().Get("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "invalid userId")
			return
		}
		userID = id
	}
	listing, err := h.svc.ListCart(r.Context(), userID)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// AddToCart handles POST /api/cart
// body: { "productId": 1, "qty": 2, "userId": 1 }
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	line, err := h.svc.AddItem(r.Context(), req.UserID, req.ProductID, req.Qty)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

// UpdateCartQty handles POST /api/cart/{cartId}
// body: { "qty": 3 }. Zero is stored as is.
func (h *Handler) UpdateCartQty(w http.ResponseWriter, r *http.Request) {
	cartID := pathID(r, "cartId")
	var req qtyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.svc.UpdateQty(r.Context(), cartID, req.Qty)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SetCartQty handles PUT /api/cart/{cartId}
// body: { "qty": 0 } removes the line.
func (h *Handler) SetCartQty(w http.ResponseWriter, r *http.Request) {
	cartID := pathID(r, "cartId")
	var req qtyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.svc.SetQuantity(r.Context(), cartID, req.Qty)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RemoveFromCart handles DELETE /api/cart/{cartId}
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cartID := pathID(r, "cartId")
	res, err := h.svc.RemoveItem(r.Context(), cartID)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Checkout handles POST /api/checkout
// body: { "cartItems": [{ "productId": 1, "qty": 2 }], "name": "...", "email": "..." }
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	// anything but a JSON array counts as missing
	raw := bytes.TrimSpace(req.CartItems)
	if len(raw) == 0 || raw[0] != '[' {
		writeErr(w, http.StatusBadRequest, "Missing cartItems")
		return
	}
	var items []models.CheckoutItem
	if err := json.Unmarshal(raw, &items); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid cartItems")
		return
	}
	if items == nil {
		items = []models.CheckoutItem{}
	}

	receipt, err := h.svc.Checkout(r.Context(), models.CheckoutRequest{
		CartItems: items,
		Name:      req.Name,
		Email:     req.Email,
		UserID:    req.UserID,
	})
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]models.Receipt{"receipt": receipt})
}

// RegisterUser handles POST /api/users
// body: { "name": "...", "email": "..." }
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.svc.RegisterUser(r.Context(), req.Name, req.Email)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// GetUser handles GET /api/users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	u, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Health(r.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
