// Package importer loads customers and their address books from CSV exports.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"backoffice/internal/domain"
	"backoffice/internal/logger"
	addresssvc "backoffice/internal/service/address"
	customersvc "backoffice/internal/service/customer"
	"backoffice/internal/tenant"
	"go.uber.org/zap"
)

type CustomerWriter interface {
	GetOrCreateByEmail(ctx context.Context, in customersvc.CreateCustomerInput) (*domain.Customer, bool, error)
}

type AddressWriter interface {
	FindByCustomerID(ctx context.Context, customerID, orgID string) ([]domain.Address, error)
	Create(ctx context.Context, in addresssvc.CreateAddressInput, orgID string) (*domain.Address, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type noTx struct{}

func (noTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

// Result counts what a run committed.
type Result struct {
	CustomersCreated  int
	CustomersExisting int
	AddressesCreated  int
}

// CSVImporter reads customer exports with the columns
// email,first_name,last_name,phone,user_id,street,apartment,city,state,postal_code,country.
// A row with a blank email continues the previous customer and only contributes an address.
type CSVImporter struct {
	reader    *csv.Reader
	customers CustomerWriter
	addresses AddressWriter
	tx        Transactor
	orgID     string
	log       *zap.Logger
}

func NewCSVImporter(r io.Reader, customers CustomerWriter, addresses AddressWriter, tx Transactor, orgID string, log *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	if tx == nil {
		tx = noTx{}
	}
	log = logger.OrNop(log)
	return &CSVImporter{
		reader:    csvr,
		customers: customers,
		addresses: addresses,
		tx:        tx,
		orgID:     orgID,
		log:       log.Named("importer"),
	}
}

type csvRow struct {
	customer customersvc.CreateCustomerInput
	address  addresssvc.CreateAddressInput
}

func (r csvRow) hasAddress() bool {
	return r.address.Street != ""
}

type lineAddress struct {
	line    int
	address addresssvc.CreateAddressInput
}

// customerBlock is a customer row followed by its continuation rows.
type customerBlock struct {
	line      int
	customer  customersvc.CreateCustomerInput
	addresses []lineAddress
}

// Run imports every customer block in its own transaction, so a failing row leaves
// no partial customer behind. Addresses are written only while the customer's address
// book is empty, which keeps re-runs from duplicating it.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result
	ctx = tenant.WithOrganizationID(ctx, i.orgID)

	blocks, err := i.readBlocks()
	if err != nil {
		return res, err
	}

	for _, b := range blocks {
		var (
			fresh bool
			addrs int
		)
		err := i.tx.WithinTx(ctx, func(ctx context.Context) error {
			var err error
			fresh, addrs, err = i.importBlock(ctx, b)
			return err
		})
		if err != nil {
			return res, err
		}
		if fresh {
			res.CustomersCreated++
		} else {
			res.CustomersExisting++
		}
		res.AddressesCreated += addrs
	}

	i.log.Info("import finished",
		zap.Int("customers_created", res.CustomersCreated),
		zap.Int("customers_existing", res.CustomersExisting),
		zap.Int("addresses_created", res.AddressesCreated),
	)
	return res, nil
}

func (i *CSVImporter) readBlocks() ([]customerBlock, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["email"]; !ok {
		return nil, errors.New("read headers: missing email column")
	}

	var blocks []customerBlock
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			return blocks, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := parseRow(record, index)

		if row.customer.Email != "" {
			blocks = append(blocks, customerBlock{line: line, customer: row.customer})
		} else if !row.hasAddress() {
			continue
		} else if len(blocks) == 0 {
			return nil, fmt.Errorf("line %d: address row without a customer", line)
		}
		if row.hasAddress() {
			last := &blocks[len(blocks)-1]
			last.addresses = append(last.addresses, lineAddress{line: line, address: row.address})
		}
	}
}

func (i *CSVImporter) importBlock(ctx context.Context, b customerBlock) (fresh bool, addresses int, err error) {
	c, fresh, err := i.customers.GetOrCreateByEmail(ctx, b.customer)
	if err != nil {
		return false, 0, fmt.Errorf("line %d: customer %q: %w", b.line, b.customer.Email, err)
	}
	if len(b.addresses) == 0 {
		return fresh, 0, nil
	}
	if !fresh {
		existing, err := i.addresses.FindByCustomerID(ctx, c.ID, i.orgID)
		if err != nil {
			return false, 0, fmt.Errorf("line %d: addresses for %q: %w", b.line, c.Email, err)
		}
		if len(existing) > 0 {
			return fresh, 0, nil
		}
	}

	for _, la := range b.addresses {
		in := la.address
		in.CustomerID = c.ID
		if in.FirstName == "" {
			in.FirstName = c.FirstName
		}
		if in.LastName == "" {
			in.LastName = c.LastName
		}
		if in.Phone == "" {
			in.Phone = c.Phone
		}
		if _, err := i.addresses.Create(ctx, in, i.orgID); err != nil {
			return false, 0, fmt.Errorf("line %d: address for %q: %w", la.line, c.Email, err)
		}
		addresses++
	}
	return fresh, addresses, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) csvRow {
	row := csvRow{
		customer: customersvc.CreateCustomerInput{
			Email:     pick(record, index, "email"),
			FirstName: pick(record, index, "first_name"),
			LastName:  pick(record, index, "last_name"),
			Phone:     pick(record, index, "phone"),
		},
		address: addresssvc.CreateAddressInput{
			Street:     pick(record, index, "street"),
			Apartment:  pick(record, index, "apartment"),
			City:       pick(record, index, "city"),
			State:      pick(record, index, "state"),
			PostalCode: pick(record, index, "postal_code"),
			Country:    pick(record, index, "country"),
		},
	}
	if userID := pick(record, index, "user_id"); userID != "" {
		row.customer.UserID = &userID
	} else {
		row.customer.IsGuest = true
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
