package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/example/storefront-client/internal/cartview"
	"github.com/example/storefront-client/internal/domain/checkout"
	"github.com/example/storefront-client/internal/domain/session"
	"github.com/example/storefront-client/internal/infrastructure/commerce"
	"github.com/example/storefront-client/internal/query"
)

func variantLabel(size, color string) string {
	var parts []string
	for _, p := range []string{size, color} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "/")
}

func renderProducts(products []*query.ProductReadModel) func(io.Writer) {
	return func(w io.Writer) {
		if len(products) == 0 {
			fmt.Fprintln(w, "No products")
			return
		}
		for _, p := range products {
			fmt.Fprintf(w, "%s (%s)\n", p.Name, p.Category)
			for _, v := range p.Variants {
				fmt.Fprintf(w, "  [%d] %s %s", v.ID, variantLabel(v.Size, v.Color), v.Price.StringFixed(2))
				if !v.InStock {
					fmt.Fprint(w, " (out of stock)")
				}
				fmt.Fprintln(w)
			}
		}
	}
}

func renderCart(view *cartview.View) func(io.Writer) {
	return func(w io.Writer) {
		title := "Cart"
		if view.Guest {
			title = "Guest cart"
		}
		if len(view.Lines) == 0 {
			fmt.Fprintf(w, "%s is empty\n", title)
			return
		}
		fmt.Fprintln(w, title)
		for _, l := range view.Lines {
			fmt.Fprintf(w, "[%d] %s %s x%d %s\n", l.Ref, l.ProductName, variantLabel(l.Size, l.Color), l.Quantity, l.Subtotal.StringFixed(2))
		}
		fmt.Fprintf(w, "Total: %s\n", view.Total.StringFixed(2))
	}
}

func renderOrders(orders []*query.OrderReadModel) func(io.Writer) {
	return func(w io.Writer) {
		if len(orders) == 0 {
			fmt.Fprintln(w, "No orders yet")
			return
		}
		for _, o := range orders {
			invoice := "-"
			if o.InvoiceAvailable {
				invoice = o.InvoiceNumber
			}
			fmt.Fprintf(w, "#%d %s %s %d item(s) invoice %s\n", o.ID, o.Status, o.Total.StringFixed(2), o.ItemCount(), invoice)
		}
	}
}

func renderOrder(o *query.OrderReadModel) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintf(w, "Order #%d\n", o.ID)
		fmt.Fprintf(w, "Status: %s\n", o.Status)
		fmt.Fprintf(w, "Placed: %s\n", o.CreatedAt.Format("2006-01-02 15:04"))
		if o.InvoiceAvailable {
			fmt.Fprintf(w, "Invoice: %s\n", o.InvoiceNumber)
		}
		for _, item := range o.Items {
			fmt.Fprintf(w, "  %s %s x%d %s\n", item.ProductName, variantLabel(item.Size, item.Color), item.Quantity, item.Subtotal.StringFixed(2))
		}
		fmt.Fprintf(w, "Total: %s\n", o.Total.StringFixed(2))
	}
}

func renderOutcome(o *checkout.Outcome) func(io.Writer) {
	return func(w io.Writer) {
		switch o.Status {
		case checkout.StatusSucceeded:
			fmt.Fprintf(w, "Payment succeeded for order #%d\n", o.OrderID)
			fmt.Fprintf(w, "Confirmation: %s\n", o.ConfirmationPath)
		default:
			fmt.Fprintf(w, "Payment failed: %s\n", o.Message)
		}
	}
}

func renderSession(s *session.Session) func(io.Writer) {
	return func(w io.Writer) {
		if s == nil {
			fmt.Fprintln(w, "Not signed in (guest)")
			return
		}
		fmt.Fprintf(w, "Signed in as %s (%s)\n", s.Email, s.Role)
	}
}

func renderAdminProducts(products []*query.ProductReadModel) func(io.Writer) {
	return func(w io.Writer) {
		if len(products) == 0 {
			fmt.Fprintln(w, "No products")
			return
		}
		for _, p := range products {
			fmt.Fprintf(w, "#%d %s (%s)\n", p.ID, p.Name, p.Category)
			for _, v := range p.Variants {
				fmt.Fprintf(w, "  [%d] %s %s stock %d\n", v.ID, variantLabel(v.Size, v.Color), v.Price.StringFixed(2), v.Stock)
			}
		}
	}
}

func renderReviews(r *query.ProductReviews) func(io.Writer) {
	return func(w io.Writer) {
		if r.Count == 0 {
			fmt.Fprintf(w, "No reviews for product %d\n", r.ProductID)
			return
		}
		fmt.Fprintf(w, "%d review(s), average %s/5\n", r.Count, r.Average.StringFixed(1))
		for _, review := range r.Reviews {
			fmt.Fprintf(w, "%s %s %d/5", review.CreatedAt.Format("2006-01-02"), review.Author, review.Rating)
			if review.Comment != "" {
				fmt.Fprintf(w, " %s", review.Comment)
			}
			fmt.Fprintln(w)
		}
	}
}

func renderProfile(p *commerce.Profile) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintf(w, "Email: %s\n", p.Email)
		fmt.Fprintf(w, "Username: %s\n", p.Username)
		if name := strings.TrimSpace(p.FirstName + " " + p.LastName); name != "" {
			fmt.Fprintf(w, "Name: %s\n", name)
		}
		fmt.Fprintf(w, "Role: %s\n", p.Role)
	}
}

func renderUsers(users []commerce.AdminUser) func(io.Writer) {
	return func(w io.Writer) {
		if len(users) == 0 {
			fmt.Fprintln(w, "No users")
			return
		}
		for _, u := range users {
			var flags []string
			if !u.IsActive {
				flags = append(flags, "inactive")
			}
			if u.IsStaff {
				flags = append(flags, "staff")
			}
			if u.IsSuperuser {
				flags = append(flags, "superuser")
			}
			fmt.Fprintf(w, "#%d %s %s", u.ID, u.Email, u.Role)
			if len(flags) > 0 {
				fmt.Fprintf(w, " [%s]", strings.Join(flags, ","))
			}
			fmt.Fprintln(w)
		}
	}
}
