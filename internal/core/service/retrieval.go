package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

// Retriever builds the relevance-filtered prose summary injected into chat
// completions. Matching is a case-insensitive substring check of each
// whitespace-delimited query token against the entity's searchable fields;
// any token hit qualifies the record.
type Retriever struct {
	customers ports.CustomerService
	invoices  ports.InvoiceService
	log       zerolog.Logger
}

func NewRetriever(customers ports.CustomerService, invoices ports.InvoiceService, log zerolog.Logger) *Retriever {
	return &Retriever{customers: customers, invoices: invoices, log: log}
}

// SearchCustomers returns the owner's customers with any token match on
// name, email, company, city or address.
func (r *Retriever) SearchCustomers(ctx context.Context, ownerID, query string) ([]domain.Customer, error) {
	customers, err := r.customers.FetchAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return matchCustomers(customers, query), nil
}

// SearchInvoices returns the owner's invoices with any token match on
// number, date, item descriptions or the paid/unpaid label.
func (r *Retriever) SearchInvoices(ctx context.Context, ownerID, query string) ([]domain.Invoice, error) {
	invoices, err := r.invoices.FetchAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return matchInvoices(invoices, query), nil
}

// Retrieve ensures both collections are loaded, matches them against the
// query, expands the result one hop (invoices of matched customers,
// customers of matched invoices), deduplicates by identity and renders the
// human-readable summary.
func (r *Retriever) Retrieve(ctx context.Context, ownerID, query string) (*ports.RelevantContext, error) {
	customers, err := r.customers.FetchAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	invoices, err := r.invoices.FetchAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	matchedCustomers := matchCustomers(customers, query)
	matchedInvoices := matchInvoices(invoices, query)

	// One hop out: invoices belonging to matched customers.
	allInvoices := matchedInvoices
	seenInvoices := make(map[string]struct{}, len(matchedInvoices))
	for _, inv := range matchedInvoices {
		seenInvoices[inv.ID] = struct{}{}
	}
	for _, c := range matchedCustomers {
		for _, inv := range invoices {
			if inv.CustomerID != c.ID {
				continue
			}
			if _, ok := seenInvoices[inv.ID]; ok {
				continue
			}
			seenInvoices[inv.ID] = struct{}{}
			allInvoices = append(allInvoices, inv)
		}
	}

	// And back: customers owning matched invoices.
	allCustomers := matchedCustomers
	seenCustomers := make(map[string]struct{}, len(matchedCustomers))
	for _, c := range matchedCustomers {
		seenCustomers[c.ID] = struct{}{}
	}
	for _, inv := range allInvoices {
		if _, ok := seenCustomers[inv.CustomerID]; ok {
			continue
		}
		for _, c := range customers {
			if c.ID == inv.CustomerID {
				seenCustomers[c.ID] = struct{}{}
				allCustomers = append(allCustomers, c)
				break
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant customers and %d relevant invoices.\n", len(allCustomers), len(allInvoices))
	for _, c := range allCustomers {
		b.WriteString("\n")
		b.WriteString(formatCustomerInfo(c, invoices))
		b.WriteString("\n")
	}
	for _, inv := range allInvoices {
		b.WriteString("\n")
		b.WriteString(formatInvoiceInfo(inv, customerName(allCustomers, inv.CustomerID)))
		b.WriteString("\n")
	}

	r.log.Debug().
		Str("owner_id", ownerID).
		Int("customers", len(allCustomers)).
		Int("invoices", len(allInvoices)).
		Msg("context retrieved")

	return &ports.RelevantContext{
		Customers: allCustomers,
		Invoices:  allInvoices,
		Summary:   b.String(),
	}, nil
}

func matchCustomers(customers []domain.Customer, query string) []domain.Customer {
	terms := strings.Fields(strings.ToLower(query))
	var matched []domain.Customer
	for _, c := range customers {
		searchable := strings.ToLower(strings.Join(nonEmpty(
			c.Name, c.Email, c.Company, c.City, c.Address,
		), " "))
		if anyTermMatches(terms, searchable) {
			matched = append(matched, c)
		}
	}
	return matched
}

func matchInvoices(invoices []domain.Invoice, query string) []domain.Invoice {
	terms := strings.Fields(strings.ToLower(query))
	var matched []domain.Invoice
	for _, inv := range invoices {
		parts := []string{inv.Number, inv.Date}
		for _, item := range inv.Items {
			parts = append(parts, item.Description)
		}
		parts = append(parts, paidLabel(inv.Paid))
		searchable := strings.ToLower(strings.Join(parts, " "))
		if anyTermMatches(terms, searchable) {
			matched = append(matched, inv)
		}
	}
	return matched
}

func anyTermMatches(terms []string, searchable string) bool {
	for _, term := range terms {
		if strings.Contains(searchable, term) {
			return true
		}
	}
	return false
}

func formatCustomerInfo(c domain.Customer, invoices []domain.Invoice) string {
	total, paid := 0, 0
	for _, inv := range invoices {
		if inv.CustomerID != c.ID {
			continue
		}
		total++
		if inv.Paid {
			paid++
		}
	}

	lines := []string{"Customer: " + c.Name}
	if c.Company != "" {
		lines = append(lines, "Company: "+c.Company)
	}
	if c.Email != "" {
		lines = append(lines, "Email: "+c.Email)
	}
	if c.Phone != "" {
		lines = append(lines, "Phone: "+c.Phone)
	}
	if c.Address != "" {
		lines = append(lines, "Address: "+c.Address)
	}
	if c.City != "" {
		lines = append(lines, "City: "+c.City)
	}
	lines = append(lines, "Currency: "+c.Currency)
	vatID := c.VATID
	if vatID == "" {
		vatID = "Not provided"
	}
	lines = append(lines,
		"VAT ID: "+vatID,
		fmt.Sprintf("Invoices: %d total (%d paid, %d unpaid)", total, paid, total-paid),
	)
	return strings.Join(lines, "\n")
}

func formatInvoiceInfo(inv domain.Invoice, customer string) string {
	if customer == "" {
		customer = "Unknown"
	}

	lines := []string{
		"Invoice #" + inv.Number,
		"Date: " + inv.Date,
	}
	if inv.DeliveryDate != "" {
		lines = append(lines, "Delivery Date: "+inv.DeliveryDate)
	}
	if inv.DueDate != "" {
		lines = append(lines, "Due Date: "+inv.DueDate)
	}
	status := "Unpaid"
	if inv.Paid {
		status = "Paid"
	}
	lines = append(lines,
		"Status: "+status,
		"Customer: "+customer,
		"Items:",
	)
	for _, item := range inv.Items {
		lines = append(lines, fmt.Sprintf("- %s: %s x %s",
			item.Description, formatAmount(item.Quantity), formatAmount(item.Price)))
	}
	lines = append(lines,
		"Subtotal: "+formatAmount(inv.Subtotal),
		"VAT: "+formatAmount(inv.VAT),
		"Total: "+formatAmount(inv.Total),
	)
	return strings.Join(lines, "\n")
}

func customerName(customers []domain.Customer, id string) string {
	for _, c := range customers {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func paidLabel(paid bool) string {
	if paid {
		return "paid"
	}
	return "unpaid"
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nonEmpty(values ...string) []string {
	kept := values[:0]
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return kept
}
