package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvribeiro/suplemarket/internal/logging"
	"github.com/mvribeiro/suplemarket/internal/mailer"
	"github.com/mvribeiro/suplemarket/internal/service/cart"
	"github.com/mvribeiro/suplemarket/internal/userinfo"
)

var ErrEmptyCart = errors.New("cart is empty")

// DefaultPacing is the pause between successive supplier emails, so a
// checkout with many suppliers does not hammer the mail relay.
const DefaultPacing = 500 * time.Millisecond

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

// Partition is one supplier's slice of the order. Failed partitions carry
// the reason; callers see them instead of a silent skip.
type Partition struct {
	SupplierID uuid.UUID     `json:"supplier_id"`
	Supplier   userinfo.Info `json:"supplier"`
	Items      []cart.Item   `json:"items"`
	Subtotal   float64       `json:"subtotal"`
	Sent       bool          `json:"sent"`
	Error      string        `json:"error,omitempty"`
}

type Service struct {
	Users  *userinfo.Service
	Mail   mailer.Sender
	Pacing time.Duration

	// Inbox receives a copy of every order so the marketplace keeps a
	// record even when a supplier email bounces. Empty disables the copy.
	Inbox string
}

func New(users *userinfo.Service, mail mailer.Sender) *Service {
	return &Service{Users: users, Mail: mail, Pacing: DefaultPacing}
}

// Checkout partitions the cart by supplier, sends one order email per
// partition and clears the cart. Partitions without a resolvable supplier
// address are reported back as failed; the rest still go out.
func (s *Service) Checkout(ctx context.Context, c *cart.Cart, info CustomerInfo) ([]Partition, error) {
	l := logging.FromContext(ctx)

	items := c.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	var order []uuid.UUID
	grouped := map[uuid.UUID][]cart.Item{}
	for _, it := range items {
		owner := it.Product.OwnerID
		if _, ok := grouped[owner]; !ok {
			order = append(order, owner)
		}
		grouped[owner] = append(grouped[owner], it)
	}

	now := time.Now()
	partitions := make([]Partition, 0, len(order))
	sent := 0
	for _, owner := range order {
		part := Partition{
			SupplierID: owner,
			Supplier:   s.Users.Get(ctx, owner),
			Items:      grouped[owner],
		}
		for _, it := range part.Items {
			part.Subtotal += it.Subtotal()
		}

		if part.Supplier.Email == "" {
			part.Error = "supplier has no contact address"
			l.Warn("checkout_partition_skipped", "supplier_id", owner, "reason", part.Error)
			partitions = append(partitions, part)
			continue
		}

		if sent > 0 && s.Pacing > 0 {
			time.Sleep(s.Pacing)
		}

		subject := fmt.Sprintf("Novo Pedido Marketplace - %s - R$ %.2f", info.Name, part.Subtotal)
		body := composeBody(info, part, now)
		if err := s.Mail.Send(ctx, part.Supplier.Email, subject, body); err != nil {
			part.Error = err.Error()
			l.Error("checkout_send_failed", "supplier_id", owner, "error", err)
		} else {
			part.Sent = true
			sent++
		}
		partitions = append(partitions, part)
	}

	if s.Inbox != "" {
		var total float64
		for _, p := range partitions {
			total += p.Subtotal
		}
		subject := fmt.Sprintf("Novo Pedido Marketplace - %s - R$ %.2f", info.Name, total)
		if err := s.Mail.Send(ctx, s.Inbox, subject, summaryBody(info, partitions, now)); err != nil {
			l.Error("checkout_inbox_copy_failed", "inbox", s.Inbox, "error", err)
		}
	}

	c.Clear()
	l.Info("checkout_complete", "partitions", len(partitions), "sent", sent)
	return partitions, nil
}

func writeHeader(b *strings.Builder, info CustomerInfo, now time.Time) {
	b.WriteString("NOVO PEDIDO - Marketplace de Suplementos\n\n")
	fmt.Fprintf(b, "Data: %s\n\n", now.Format("02/01/2006 15:04"))

	b.WriteString("=== DADOS DO CLIENTE ===\n")
	fmt.Fprintf(b, "Nome: %s\n", info.Name)
	fmt.Fprintf(b, "Email: %s\n", info.Email)
	fmt.Fprintf(b, "Telefone: %s\n", info.Phone)
	if info.Notes != "" {
		fmt.Fprintf(b, "Observações: %s\n", info.Notes)
	}

	b.WriteString("\n=== ITENS DO PEDIDO ===\n")
}

func writeSupplierBlock(b *strings.Builder, part Partition) {
	fmt.Fprintf(b, "\n--- FORNECEDOR: %s ---\n", part.Supplier.DisplayName)
	if part.Supplier.Email != "" {
		fmt.Fprintf(b, "Email: %s\n", part.Supplier.Email)
	}
	b.WriteString("\n")

	for i, it := range part.Items {
		p := it.Product
		fmt.Fprintf(b, "%d. %s\n", i+1, p.Name)
		fmt.Fprintf(b, "   Marca: %s\n", p.Brand)
		fmt.Fprintf(b, "   Categoria: %s\n", p.Category)
		fmt.Fprintf(b, "   Quantidade: %g %s\n", it.Quantity, p.Unit)
		fmt.Fprintf(b, "   Preço unitário: R$ %.2f\n", p.SalePrice)
		fmt.Fprintf(b, "   Subtotal: R$ %.2f\n\n", it.Subtotal())
	}
}

func writeResume(b *strings.Builder, count, total float64) {
	b.WriteString("=== RESUMO ===\n")
	fmt.Fprintf(b, "Total de itens: %g\n", count)
	fmt.Fprintf(b, "VALOR TOTAL: R$ %.2f\n\n", total)
	b.WriteString("Pedido gerado automaticamente pelo Marketplace de Suplementos.")
}

func composeBody(info CustomerInfo, part Partition, now time.Time) string {
	var b strings.Builder

	writeHeader(&b, info, now)
	writeSupplierBlock(&b, part)

	var count float64
	for _, it := range part.Items {
		count += it.Quantity
	}
	writeResume(&b, count, part.Subtotal)

	return b.String()
}

// summaryBody is the marketplace's copy: every supplier block of the order in
// one message.
func summaryBody(info CustomerInfo, parts []Partition, now time.Time) string {
	var b strings.Builder

	writeHeader(&b, info, now)

	var count, total float64
	for _, part := range parts {
		writeSupplierBlock(&b, part)
		for _, it := range part.Items {
			count += it.Quantity
		}
		total += part.Subtotal
	}
	writeResume(&b, count, total)

	return b.String()
}
