package httppresentation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	appcatalog "github.com/quilang/hardpos/internal/application/catalog"
	appcheckout "github.com/quilang/hardpos/internal/application/checkout"
	appexpense "github.com/quilang/hardpos/internal/application/expense"
	appledger "github.com/quilang/hardpos/internal/application/ledger"
	domaincart "github.com/quilang/hardpos/internal/domain/cart"
	domaincatalog "github.com/quilang/hardpos/internal/domain/catalog"
	domainexpense "github.com/quilang/hardpos/internal/domain/expense"
	domainledger "github.com/quilang/hardpos/internal/domain/ledger"
	domainsale "github.com/quilang/hardpos/internal/domain/sale"
	"github.com/quilang/hardpos/internal/pkg/receipt"
	"go.uber.org/zap"
)

// Handler exposes the store core over HTTP. The cart is the single
// session basket owned by the server process; the engines it calls into
// are the only place balance and stock arithmetic happens.
type Handler struct {
	catalog  *appcatalog.Service
	checkout *appcheckout.Service
	ledger   *appledger.Service
	expenses *appexpense.Service
	cart     *domaincart.Cart
	slip     receipt.Header
	log      *zap.Logger
	metrics  *Metrics
}

func NewHandler(
	catalogSvc *appcatalog.Service,
	checkoutSvc *appcheckout.Service,
	ledgerSvc *appledger.Service,
	expenseSvc *appexpense.Service,
	cart *domaincart.Cart,
	slip receipt.Header,
	logger *zap.Logger,
	metrics *Metrics,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalog:  catalogSvc,
		checkout: checkoutSvc,
		ledger:   ledgerSvc,
		expenses: expenseSvc,
		cart:     cart,
		slip:     slip,
		log:      logger.With(zap.String("component", "http_server")),
		metrics:  metrics,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	h.handle(mux, "GET /health", h.handleHealth)

	h.handle(mux, "GET /products", h.handleListProducts)
	h.handle(mux, "POST /products", h.handleUpsertProduct)
	h.handle(mux, "GET /products/search", h.handleSearchProducts)
	h.handle(mux, "POST /products/{id}/stock", h.handleAdjustStock)

	h.handle(mux, "GET /cart", h.handleViewCart)
	h.handle(mux, "POST /cart/items", h.handleAddToCart)
	h.handle(mux, "PUT /cart/items/{id}", h.handleSetQuantity)
	h.handle(mux, "DELETE /cart/items/{id}", h.handleRemoveFromCart)
	h.handle(mux, "DELETE /cart", h.handleClearCart)
	h.handle(mux, "POST /checkout", h.handleCheckout)

	h.handle(mux, "GET /sales", h.handleListSales)
	h.handle(mux, "GET /sales/{id}/receipt", h.handleReceipt)

	h.handle(mux, "GET /customers", h.handleListCustomers)
	h.handle(mux, "POST /customers", h.handleCreateCustomer)
	h.handle(mux, "GET /customers/{id}/balance", h.handleBalance)
	h.handle(mux, "GET /customers/{id}/transactions", h.handleHistory)
	h.handle(mux, "POST /customers/{id}/transactions", h.handleRecordTransaction)

	h.handle(mux, "GET /expenses", h.handleListExpenses)
	h.handle(mux, "POST /expenses", h.handleAddExpense)

	return mux
}

// handle wires one route through the middleware chain:
// trace -> request logger -> metrics -> access log -> handler.
func (h *Handler) handle(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	wrapped := h.withTrace(pattern,
		h.withRequestLogger(
			h.withMetrics(pattern,
				h.withAccessLog(pattern, handler),
			),
		),
	)
	mux.Handle(pattern, wrapped)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// --- catalog

type productResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
	Stock    int    `json:"stock"`
	Unit     string `json:"unit"`
}

func toProductResponse(p *domaincatalog.Product) productResponse {
	return productResponse{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		Stock:    p.Stock,
		Unit:     p.Unit,
	}
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

type upsertProductRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
	Stock    int    `json:"stock"`
	Unit     string `json:"unit"`
}

func (h *Handler) handleUpsertProduct(w http.ResponseWriter, r *http.Request) {
	var req upsertProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := h.catalog.Upsert(r.Context(), appcatalog.UpsertInput{
		ID:       req.ID,
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Stock:    req.Stock,
		Unit:     req.Unit,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

type adjustStockRequest struct {
	Delta int `json:"delta"`
}

type adjustStockResponse struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}

func (h *Handler) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := r.PathValue("id")
	stock, err := h.catalog.AdjustStock(r.Context(), id, req.Delta)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adjustStockResponse{ProductID: id, Stock: stock})
}

// --- cart & checkout

type cartLineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type cartResponse struct {
	Lines []cartLineResponse `json:"lines"`
	Total int64              `json:"total"`
}

func (h *Handler) cartView() cartResponse {
	lines := h.cart.Lines()
	out := cartResponse{Lines: make([]cartLineResponse, 0, len(lines))}
	for _, l := range lines {
		out.Lines = append(out.Lines, cartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Unit:      l.Unit,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		})
	}
	out.Total = h.cart.Total()
	return out
}

func (h *Handler) handleViewCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.cartView())
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
}

type addToCartResponse struct {
	Cart cartResponse `json:"cart"`
	// Stock the catalog currently has for the added product, so the
	// terminal can warn when the basket exceeds it. Checkout will still
	// accept the oversell and truncate stock at zero.
	Stock int `json:"stock"`
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := h.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.cart.Add(p)
	writeJSON(w, http.StatusOK, addToCartResponse{Cart: h.cartView(), Stock: p.Stock})
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.cart.SetQuantity(r.PathValue("id"), req.Quantity)
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Remove(r.PathValue("id"))
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) handleClearCart(w http.ResponseWriter, _ *http.Request) {
	h.cart.Clear()
	writeJSON(w, http.StatusOK, h.cartView())
}

type saleLineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type saleResponse struct {
	ID    string             `json:"id"`
	Date  time.Time          `json:"date"`
	Lines []saleLineResponse `json:"lines"`
	Total int64              `json:"total"`
}

func toSaleResponse(s *domainsale.Sale) saleResponse {
	out := saleResponse{
		ID:    s.ID,
		Date:  s.Date,
		Total: s.Total,
		Lines: make([]saleLineResponse, 0, len(s.Lines)),
	}
	for _, l := range s.Lines {
		out.Lines = append(out.Lines, saleLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Unit:      l.Unit,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		})
	}
	return out
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	s, err := h.checkout.Process(r.Context(), h.cart)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSaleResponse(s))
}

func (h *Handler) handleListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.checkout.ListSales(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]saleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, toSaleResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleReceipt(w http.ResponseWriter, r *http.Request) {
	s, err := h.checkout.GetSale(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(receipt.Render(h.slip, s)))
}

// --- customers & ledger

type customerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.ledger.ListAccounts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]customerResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, customerResponse{
			ID:      a.Customer.ID,
			Name:    a.Customer.Name,
			Contact: a.Customer.Contact,
			Address: a.Customer.Address,
			Balance: a.Balance,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type createCustomerRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Address string `json:"address"`
}

func (h *Handler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	c, err := h.ledger.CreateCustomer(r.Context(), req.Name, req.Contact, req.Address)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customerResponse{
		ID:      c.ID,
		Name:    c.Name,
		Contact: c.Contact,
		Address: c.Address,
		Balance: 0,
	})
}

type balanceResponse struct {
	CustomerID string `json:"customer_id"`
	Balance    int64  `json:"balance"`
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	balance, err := h.ledger.Balance(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{CustomerID: id, Balance: balance})
}

type transactionResponse struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	Type        string    `json:"type"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

func toTransactionResponse(tx *domainledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		CustomerID:  tx.CustomerID,
		Type:        string(tx.Type),
		Amount:      tx.Amount,
		Description: tx.Description,
		Date:        tx.Date,
	}
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

type recordTransactionRequest struct {
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

func (h *Handler) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req recordTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tx, err := h.ledger.RecordTransaction(r.Context(), r.PathValue("id"),
		domainledger.Type(req.Type), req.Amount, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

// --- expenses

type expenseResponse struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Category    string    `json:"category"`
}

func (h *Handler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenses.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseResponse{
			ID:          e.ID,
			Date:        e.Date,
			Description: e.Description,
			Amount:      e.Amount,
			Category:    e.Category,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type addExpenseRequest struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Category    string `json:"category"`
}

func (h *Handler) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req addExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	e, err := h.expenses.Add(r.Context(), req.Description, req.Amount, req.Category)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expenseResponse{
		ID:          e.ID,
		Date:        e.Date,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
	})
}

// --- plumbing

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domaincatalog.ErrNotFound),
		errors.Is(err, domainledger.ErrCustomerNotFound),
		errors.Is(err, domainsale.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domainledger.ErrCustomerExists),
		errors.Is(err, domainsale.ErrConflict):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, domaincart.ErrEmpty),
		errors.Is(err, domainledger.ErrInvalidAmount),
		errors.Is(err, domainledger.ErrInvalidType),
		errors.Is(err, domainledger.ErrInvalidName),
		errors.Is(err, domaincatalog.ErrInvalidName),
		errors.Is(err, domaincatalog.ErrInvalidPrice),
		errors.Is(err, domaincatalog.ErrInvalidStock),
		errors.Is(err, domainexpense.ErrInvalidAmount),
		errors.Is(err, domainexpense.ErrInvalidDescription):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
