package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tokora/internal/models/request_models"
	"tokora/internal/services"
	"tokora/pkg/utils"
)

type PaymentController struct {
	billingService services.BillingServiceInterface
	invoiceService services.InvoiceServiceInterface
}

func NewPaymentController(
	billingService services.BillingServiceInterface,
	invoiceService services.InvoiceServiceInterface,
) *PaymentController {
	return &PaymentController{
		billingService: billingService,
		invoiceService: invoiceService,
	}
}

func authedUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "user identity missing")
		return uuid.Nil, false
	}
	return userID, true
}

func (p *PaymentController) GetPackages(c *gin.Context) {
	country := c.DefaultQuery("country", "US")
	packages := p.billingService.ListPackages(country)
	utils.RespondSuccess(c, packages, "Packages priced successfully")
}

func (p *PaymentController) CreateOrder(c *gin.Context) {
	var request request_models.CreateOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	order, err := p.billingService.CreateOrder(c.Request.Context(), userID, services.PackageSelector{
		PackageID:    request.PackageID,
		CustomTokens: request.CustomTokens,
	}, request.BillingCountry)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, order, "Order created successfully")
}

func (p *PaymentController) VerifyPayment(c *gin.Context) {
	var request request_models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if _, ok := authedUserID(c); !ok {
		return
	}

	result, err := p.billingService.VerifyPayment(
		c.Request.Context(),
		request.RazorpayOrderID,
		request.RazorpayPaymentID,
		request.RazorpaySignature,
	)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "Payment verified successfully")
}

// HandleWebhook is the provider ingress. The signature is computed over the
// exact request bytes, so the body must be read raw before any parsing.
func (p *PaymentController) HandleWebhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if err := p.billingService.ProcessWebhook(c.Request.Context(), rawBody, signature); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (p *PaymentController) ListTransactions(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	txns, err := p.billingService.ListTransactions(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, txns, "Transactions listed successfully")
}

func (p *PaymentController) DownloadInvoice(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	txnID, err := uuid.Parse(c.Param("txnId"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	path, err := p.invoiceService.Resolve(c.Request.Context(), txnID, userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.File(path)
}
