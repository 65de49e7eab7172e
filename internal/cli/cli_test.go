package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/storefront-client/internal/app"
	"github.com/example/storefront-client/internal/auth"
	"github.com/example/storefront-client/internal/config"
	"github.com/example/storefront-client/internal/infrastructure/store"
	"github.com/example/storefront-client/internal/sandbox"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret = "cli-test-secret-with-at-least-32-chars"
	email      = "ada@example.com"
	password   = "correct-horse"
	adminEmail = "root@example.com"
	adminPass  = "battery-staple"
)

type result struct {
	stdout string
	stderr string
	code   int
}

// terminal is one machine running the CLI: its own state file against a shared shop
type terminal struct {
	apiURL    string
	statePath string
}

func newShop(t *testing.T) string {
	t.Helper()
	state := sandbox.NewState()
	sandbox.SeedCatalog(state)
	srv := sandbox.NewServer(state, auth.NewJWTService(testSecret, time.Hour), auth.NewPasswordHasher(bcrypt.MinCost))
	require.NoError(t, srv.CreateAdmin(adminEmail, adminPass))

	ts := httptest.NewServer(srv.Router(0))
	t.Cleanup(ts.Close)
	return ts.URL
}

func newTerminal(t *testing.T, shopURL string) *terminal {
	return &terminal{apiURL: shopURL, statePath: filepath.Join(t.TempDir(), "state.db")}
}

func (term *terminal) run(t *testing.T, args ...string) result {
	t.Helper()
	deps := Deps{
		LoadConfig: func(string) (*config.Config, error) {
			cfg := config.Default()
			cfg.APIURL = term.apiURL + "/api/"
			cfg.PaymentURL = term.apiURL
			cfg.PublishableKey = "pk_test_cli"
			cfg.Timeout = 5 * time.Second
			cfg.Store.Backend = store.BackendSQLite
			cfg.Store.Path = term.statePath
			return cfg, nil
		},
		Open: app.Open,
	}

	cmd := newRootCommand(deps)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), code: GetExitCode(err)}
}

func (term *terminal) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	res := term.run(t, args...)
	require.Equal(t, ExitSuccess, res.code, "storefront %v: %s", args, res.stderr)
	return res.stdout
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// ============================================
// Catalog and guest cart
// ============================================

func TestCLI_Products(t *testing.T) {
	term := newTerminal(t, newShop(t))

	out := term.mustRun(t, "products")

	golden(t).Assert(t, "products", []byte(out))
}

func TestCLI_ProductsJSON(t *testing.T) {
	term := newTerminal(t, newShop(t))

	out := term.mustRun(t, "products", "--format", "json")

	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			Name     string `json:"name"`
			Variants []struct {
				ID      int64 `json:"id"`
				InStock bool  `json:"in_stock"`
			} `json:"variants"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 5)
	assert.Equal(t, "Classic Tee", resp.Data[0].Name)
	assert.False(t, resp.Data[3].Variants[1].InStock)
}

func TestCLI_GuestCart(t *testing.T) {
	term := newTerminal(t, newShop(t))

	assert.Equal(t, "Guest cart is empty\n", term.mustRun(t, "cart"))

	term.mustRun(t, "cart", "add", "1", "-q", "2")
	out := term.mustRun(t, "cart", "add", "3")

	golden(t).Assert(t, "guest_cart", []byte(out))
	assert.Equal(t, out, term.mustRun(t, "cart", "list"), "guest cart survives between runs")
}

func TestCLI_GuestCartEdit(t *testing.T) {
	term := newTerminal(t, newShop(t))
	term.mustRun(t, "cart", "add", "1", "-q", "2")
	term.mustRun(t, "cart", "add", "3")

	out := term.mustRun(t, "cart", "update", "1", "3")
	assert.Contains(t, out, "[1] Canvas Cap OS/navy x3 150.00\n")

	out = term.mustRun(t, "cart", "update", "1", "0")
	assert.Contains(t, out, "x3 150.00", "quantities below one are ignored")

	out = term.mustRun(t, "cart", "remove", "0")
	assert.Equal(t, "Guest cart\n[0] Canvas Cap OS/navy x3 150.00\nTotal: 150.00\n", out)
}

func TestCLI_UnknownVariant(t *testing.T) {
	term := newTerminal(t, newShop(t))

	res := term.run(t, "cart", "add", "99")

	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Error: ")
}

// ============================================
// Sign-in, merge and checkout
// ============================================

func TestCLI_RegisterMergeAndCheckout(t *testing.T) {
	term := newTerminal(t, newShop(t))
	term.mustRun(t, "cart", "add", "1", "-q", "2")
	term.mustRun(t, "cart", "add", "3")

	out := term.mustRun(t, "register", "--email", email, "--password", password)
	assert.Equal(t, "Signed in as ada@example.com (CUSTOMER)\n", out)

	golden(t).Assert(t, "account_cart", []byte(term.mustRun(t, "cart")))

	out = term.mustRun(t, "checkout")
	golden(t).Assert(t, "checkout_success", []byte(out))

	out = term.mustRun(t, "orders")
	assert.Regexp(t, `^#1 PAID 250\.00 3 item\(s\) invoice \S+\n$`, out)

	out = term.mustRun(t, "orders", "show", "1")
	assert.Contains(t, out, "Status: PAID\n")
	assert.Contains(t, out, "  Classic Tee M/black x2 200.00\n")
	assert.Contains(t, out, "Total: 250.00\n")

	assert.Equal(t, "Cart is empty\n", term.mustRun(t, "cart"))
}

func TestCLI_PasswordFromEnvironment(t *testing.T) {
	shop := newShop(t)
	newTerminal(t, shop).mustRun(t, "register", "--email", email, "--password", password)

	t.Setenv("STOREFRONT_PASSWORD", password)
	term := newTerminal(t, shop)

	assert.Equal(t, "Signed in as ada@example.com (CUSTOMER)\n", term.mustRun(t, "login", "--email", email))
	assert.Equal(t, "Signed in as ada@example.com (CUSTOMER)\n", term.mustRun(t, "whoami"))
}

func TestCLI_LoginRejected(t *testing.T) {
	shop := newShop(t)
	newTerminal(t, shop).mustRun(t, "register", "--email", email, "--password", password)
	term := newTerminal(t, shop)

	res := term.run(t, "login", "--email", email, "--password", "wrong-password")

	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Error: ")
	assert.Equal(t, "Not signed in (guest)\n", term.mustRun(t, "whoami"))
}

func TestCLI_LoginMissingEmail(t *testing.T) {
	term := newTerminal(t, newShop(t))

	res := term.run(t, "login", "--password", password)

	assert.Equal(t, ExitCommandError, res.code)
}

func TestCLI_PartialMergeWarnsAndKeepsSession(t *testing.T) {
	term := newTerminal(t, newShop(t))
	term.mustRun(t, "cart", "add", "1")
	// three in stock
	term.mustRun(t, "cart", "add", "7", "-q", "5")

	res := term.run(t, "register", "--email", email, "--password", password)

	assert.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stderr, "Warning: guest cart merge stopped after 1 line(s), 1 left locally")
	assert.Equal(t, "Signed in as ada@example.com (CUSTOMER)\n", res.stdout)

	res = term.run(t, "checkout")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "guest cart lines are still waiting to be merged")
}

func TestCLI_CheckoutDeclined(t *testing.T) {
	term := newTerminal(t, newShop(t))
	term.mustRun(t, "register", "--email", email, "--password", password)
	term.mustRun(t, "cart", "add", "3")

	res := term.run(t, "checkout", "--payment-method", sandbox.PaymentMethodDeclined)

	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Error: payment failed: Your card was declined.")
	assert.Empty(t, res.stdout)
}

func TestCLI_CheckoutDeclinedJSON(t *testing.T) {
	term := newTerminal(t, newShop(t))
	term.mustRun(t, "register", "--email", email, "--password", password)
	term.mustRun(t, "cart", "add", "3")

	res := term.run(t, "checkout", "--payment-method", sandbox.PaymentMethodDeclined, "--format", "json")

	assert.Equal(t, ExitFailure, res.code)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeFlow, resp.Error.Code)
	assert.Equal(t, map[string]any{"decline_code": "card_declined"}, resp.Error.Details)
}

func TestCLI_CheckoutRequiresLogin(t *testing.T) {
	term := newTerminal(t, newShop(t))
	term.mustRun(t, "cart", "add", "3")

	res := term.run(t, "checkout")

	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "login required")
}

func TestCLI_LogoutKeepsGuestCart(t *testing.T) {
	term := newTerminal(t, newShop(t))
	term.mustRun(t, "register", "--email", email, "--password", password)

	assert.Equal(t, "Not signed in (guest)\n", term.mustRun(t, "logout"))

	term.mustRun(t, "cart", "add", "3")
	assert.Contains(t, term.mustRun(t, "cart"), "Guest cart\n")
}

// ============================================
// Admin
// ============================================

func TestCLI_AdminOrderStatus(t *testing.T) {
	shop := newShop(t)
	shopper := newTerminal(t, shop)
	shopper.mustRun(t, "register", "--email", email, "--password", password)
	shopper.mustRun(t, "cart", "add", "3")
	shopper.mustRun(t, "checkout")

	res := shopper.run(t, "admin", "order-status", "1", "shipped")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "admin privileges required")

	admin := newTerminal(t, shop)
	assert.Equal(t, "Signed in as root@example.com (ADMIN)\n",
		admin.mustRun(t, "login", "--email", adminEmail, "--password", adminPass))
	assert.Equal(t, "Order #1 is now SHIPPED\n", admin.mustRun(t, "admin", "order-status", "1", "shipped"))

	assert.Contains(t, shopper.mustRun(t, "orders"), "#1 SHIPPED 50.00")
}

func TestCLI_AdminInvalidStatus(t *testing.T) {
	shop := newShop(t)
	admin := newTerminal(t, shop)
	admin.mustRun(t, "login", "--email", adminEmail, "--password", adminPass)

	res := admin.run(t, "admin", "order-status", "1", "lost")

	assert.Equal(t, ExitCommandError, res.code)
}

func TestCLI_AdminProducts(t *testing.T) {
	shop := newShop(t)
	shopper := newTerminal(t, shop)
	shopper.mustRun(t, "register", "--email", email, "--password", password)
	admin := newTerminal(t, shop)
	admin.mustRun(t, "login", "--email", adminEmail, "--password", adminPass)

	res := shopper.run(t, "admin", "products", "list")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "admin privileges required")

	out := admin.mustRun(t, "admin", "products", "create", "--name", "Bucket Hat", "--category", "cloths", "--variant", "M/olive:24.50:3")
	assert.Equal(t, "#6 Bucket Hat (CLOTHS)\n  [8] M/olive 24.50 stock 3\n", out)

	out = admin.mustRun(t, "admin", "products", "update", "6", "--variant", "8=M/olive:19:5", "--variant", "L/olive:21:2")
	assert.Equal(t, "#6 Bucket Hat (CLOTHS)\n  [8] M/olive 19.00 stock 5\n  [9] L/olive 21.00 stock 2\n", out)

	assert.Contains(t, shopper.mustRun(t, "products", "--search", "hat"), "Bucket Hat (CLOTHS)")

	out = admin.mustRun(t, "admin", "products", "list")
	assert.True(t, strings.HasPrefix(out, "#6 Bucket Hat (CLOTHS)\n"), out)

	assert.Equal(t, "Product #6 deleted\n", admin.mustRun(t, "admin", "products", "delete", "6"))
	assert.Equal(t, "No products\n", shopper.mustRun(t, "products", "--search", "hat"))

	res = admin.run(t, "admin", "products", "delete", "6")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Product not found")
}

func TestCLI_AdminProductsInvalidInput(t *testing.T) {
	admin := newTerminal(t, newShop(t))
	admin.mustRun(t, "login", "--email", adminEmail, "--password", adminPass)

	tests := []struct {
		name string
		args []string
	}{
		{"variant spec", []string{"admin", "products", "create", "--name", "Hat", "--variant", "M/olive"}},
		{"missing name", []string{"admin", "products", "create", "--variant", "M/olive:1:1"}},
		{"category", []string{"admin", "products", "create", "--name", "Hat", "--category", "toys"}},
		{"negative stock", []string{"admin", "products", "update", "1", "--variant", "M/black:1:-1"}},
		{"product id", []string{"admin", "products", "delete", "tee"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := admin.run(t, tt.args...)
			assert.Equal(t, ExitCommandError, res.code, res.stderr)
		})
	}
}

func TestCLI_AdminUsers(t *testing.T) {
	shop := newShop(t)
	newTerminal(t, shop).mustRun(t, "register", "--email", email, "--password", password)
	admin := newTerminal(t, shop)
	admin.mustRun(t, "login", "--email", adminEmail, "--password", adminPass)

	out := admin.mustRun(t, "admin", "users", "list")
	assert.Equal(t, "#2 ada@example.com CUSTOMER\n#1 root@example.com ADMIN [staff]\n", out)

	out = admin.mustRun(t, "admin", "users", "update", "2", "--active=false")
	assert.Equal(t, "#2 ada@example.com CUSTOMER [inactive]\n", out)

	res := newTerminal(t, shop).run(t, "login", "--email", email, "--password", password)
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Account is deactivated")

	res = admin.run(t, "admin", "users", "update", "2", "--role", "owner")
	assert.Equal(t, ExitCommandError, res.code)
	res = admin.run(t, "admin", "users", "update", "2")
	assert.Equal(t, ExitCommandError, res.code)

	out = admin.mustRun(t, "admin", "users", "update", "2", "--role", "admin", "--active")
	assert.Equal(t, "#2 ada@example.com ADMIN\n", out)
}

// ============================================
// Catalog filters, reviews and profile
// ============================================

func TestCLI_ProductsFiltered(t *testing.T) {
	term := newTerminal(t, newShop(t))

	out := term.mustRun(t, "products", "--category", "gadgets", "--in-stock")
	assert.Equal(t, "Pocket Speaker (GADGETS)\n  [5] red 39.99\n  [6] grey 39.99 (out of stock)\n", out)

	out = term.mustRun(t, "products", "--search", "CAP")
	assert.Equal(t, "Canvas Cap (CLOTHS)\n  [3] OS/navy 50.00\n", out)

	out = term.mustRun(t, "products", "--max-price", "40")
	assert.Contains(t, out, "Rose Face Oil")
	assert.Contains(t, out, "Pocket Speaker")
	assert.NotContains(t, out, "Canvas Cap")

	assert.Equal(t, "No products\n", term.mustRun(t, "products", "--category", "mobiles", "--max-price", "100"))

	for _, args := range [][]string{{"--category", "toys"}, {"--max-price", "cheap"}, {"--max-price", "-1"}} {
		res := term.run(t, append([]string{"products"}, args...)...)
		assert.Equal(t, ExitCommandError, res.code, args)
	}
}

func TestCLI_Reviews(t *testing.T) {
	shop := newShop(t)
	term := newTerminal(t, shop)
	term.mustRun(t, "register", "--email", email, "--password", password)

	assert.Equal(t, "No reviews for product 3\n", term.mustRun(t, "reviews", "list", "3"))

	res := term.run(t, "reviews", "add", "3", "-r", "4")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Only users who bought this product can review it.")

	term.mustRun(t, "cart", "add", "4")
	term.mustRun(t, "checkout")

	assert.Equal(t, "Rated product 3 4/5\n", term.mustRun(t, "reviews", "add", "3", "-r", "4", "-m", "Smells great"))

	out := newTerminal(t, shop).mustRun(t, "reviews", "list", "3")
	assert.Regexp(t, `^1 review\(s\), average 4\.0/5\n\d{4}-\d{2}-\d{2} ada@example\.com 4/5 Smells great\n$`, out)

	for _, args := range [][]string{{"reviews", "add", "3"}, {"reviews", "add", "3", "-r", "6"}, {"reviews", "list", "oil"}} {
		res := term.run(t, args...)
		assert.Equal(t, ExitCommandError, res.code, args)
	}
}

func TestCLI_Profile(t *testing.T) {
	term := newTerminal(t, newShop(t))

	res := term.run(t, "profile")
	assert.Equal(t, ExitFailure, res.code, "guests have no profile")

	term.mustRun(t, "register", "--email", email, "--password", password)
	assert.Equal(t, "Email: ada@example.com\nUsername: ada@example.com\nRole: CUSTOMER\n", term.mustRun(t, "profile", "show"))

	out := term.mustRun(t, "profile", "update", "--first-name", "Ada", "--last-name", "Lovelace", "--email", "ada@lovelace.dev")
	assert.Contains(t, out, "Name: Ada Lovelace\n")
	assert.Contains(t, out, "Email: ada@lovelace.dev\n")
	assert.Equal(t, "Signed in as ada@lovelace.dev (CUSTOMER)\n", term.mustRun(t, "whoami"))

	res = term.run(t, "profile", "update")
	assert.Equal(t, ExitCommandError, res.code)
}

func TestCLI_ChangePassword(t *testing.T) {
	shop := newShop(t)
	term := newTerminal(t, shop)
	term.mustRun(t, "register", "--email", email, "--password", password)

	res := term.run(t, "profile", "password", "--current", "not-my-password", "--new", "staple-battery")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Current password is incorrect.")

	res = term.run(t, "profile", "password", "--current", password, "--new", "short")
	assert.Equal(t, ExitCommandError, res.code)

	t.Setenv("STOREFRONT_NEW_PASSWORD", "staple-battery")
	assert.Equal(t, "Password updated\n", term.mustRun(t, "profile", "password", "--current", password))

	res = newTerminal(t, shop).run(t, "login", "--email", email, "--password", password)
	assert.Equal(t, ExitFailure, res.code)
	newTerminal(t, shop).mustRun(t, "login", "--email", email, "--password", "staple-battery")
}

// ============================================
// Command errors
// ============================================

func TestCLI_InvalidFormat(t *testing.T) {
	term := newTerminal(t, newShop(t))

	res := term.run(t, "products", "--format", "yaml")

	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, `invalid format "yaml"`)
}

func TestCLI_InvalidArguments(t *testing.T) {
	term := newTerminal(t, newShop(t))

	tests := []struct {
		name string
		args []string
	}{
		{"variant id", []string{"cart", "add", "tee"}},
		{"zero variant", []string{"cart", "add", "0"}},
		{"line ref", []string{"cart", "remove", "first"}},
		{"quantity", []string{"cart", "update", "0", "many"}},
		{"order id", []string{"orders", "show", "latest"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := term.run(t, tt.args...)
			assert.Equal(t, ExitCommandError, res.code)
		})
	}
}

func TestCLI_ActivityTailWithoutBrokers(t *testing.T) {
	term := newTerminal(t, newShop(t))

	res := term.run(t, "activity", "tail")

	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "no kafka brokers configured")
}

func TestCLI_ConfigLoadFailure(t *testing.T) {
	cmd := newRootCommand(Deps{
		LoadConfig: config.Load,
		Open:       app.Open,
	})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"products", "--config", filepath.Join(t.TempDir(), "missing.yaml")})

	err := cmd.Execute()

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr.String(), "failed to load config")
}
