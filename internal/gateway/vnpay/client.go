package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	apiVersion = "2.1.0"
	command    = "pay"
	currCode   = "VND"
	locale     = "vn"
	orderType  = "other"

	// Gateway timestamps are 14 digits, yyyyMMddHHmmss.
	dateLayout = "20060102150405"

	defaultExpiry = 15 * time.Minute
)

type Config struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
	Expiry     time.Duration
}

// Client builds signed redirect/QR payment links for the gateway. It never
// talks to the network: the customer's browser (or QR scan) carries the
// link to the gateway, and the gateway answers through the return callback.
type Client struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Expiry <= 0 {
		cfg.Expiry = defaultExpiry
	}
	return &Client{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

type LinkRequest struct {
	TxnRef    string
	Amount    int64 // whole currency units
	OrderInfo string
	ClientIP  string
}

type PaymentLink struct {
	TxnRef        string
	RedirectURL   string
	QRPayload     string
	Amount        int64 // whole currency units
	GatewayAmount int64 // gateway minor units, Amount*100
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// CreatePaymentLink signs a redirect URL for the given merchant reference.
// The link always expires 15 minutes after creation (configurable only for
// sandbox testing); the gateway enforces the expiry on its side.
func (c *Client) CreatePaymentLink(req LinkRequest) (*PaymentLink, error) {
	if req.TxnRef == "" {
		return nil, fmt.Errorf("vnpay: txn ref is required")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("vnpay: amount must be positive, got %d", req.Amount)
	}

	createdAt := c.now()
	expiresAt := createdAt.Add(c.cfg.Expiry)
	gatewayAmount := req.Amount * 100

	clientIP := req.ClientIP
	if clientIP == "" {
		clientIP = "127.0.0.1"
	}

	params := url.Values{}
	params.Set("vnp_Version", apiVersion)
	params.Set("vnp_Command", command)
	params.Set("vnp_TmnCode", c.cfg.TmnCode)
	params.Set("vnp_Amount", strconv.FormatInt(gatewayAmount, 10))
	params.Set("vnp_CurrCode", currCode)
	params.Set("vnp_TxnRef", req.TxnRef)
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", orderType)
	params.Set("vnp_Locale", locale)
	params.Set("vnp_ReturnUrl", c.cfg.ReturnURL)
	params.Set("vnp_IpAddr", clientIP)
	params.Set("vnp_CreateDate", createdAt.Format(dateLayout))
	params.Set("vnp_ExpireDate", expiresAt.Format(dateLayout))

	query := encodeSorted(params)
	secureHash := c.sign(query)
	redirectURL := fmt.Sprintf("%s?%s&vnp_SecureHash=%s", c.cfg.PayURL, query, secureHash)

	c.logger.Info("payment link created",
		"txn_ref", req.TxnRef,
		"amount", req.Amount,
		"gateway_amount", gatewayAmount,
		"expires_at", expiresAt)

	return &PaymentLink{
		TxnRef:        req.TxnRef,
		RedirectURL:   redirectURL,
		QRPayload:     redirectURL,
		Amount:        req.Amount,
		GatewayAmount: gatewayAmount,
		CreatedAt:     createdAt,
		ExpiresAt:     expiresAt,
	}, nil
}

// sign computes the HMAC-SHA512 signature the gateway expects over the
// sorted, URL-encoded parameter string.
func (c *Client) sign(query string) string {
	mac := hmac.New(sha512.New, []byte(c.cfg.HashSecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// encodeSorted renders parameters in lexicographic key order; the gateway
// verifies the signature over exactly this ordering.
func encodeSorted(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params.Get(k)))
	}
	return b.String()
}
