package swap

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/illarion/lockwallet/internal/logging"
)

// Quoter asks providers for a quote in order and returns the first valid one.
type Quoter struct {
	providers []Provider
	validate  *validator.Validate
}

func NewQuoter(providers ...Provider) *Quoter {
	return &Quoter{providers: providers, validate: validator.New()}
}

// Quote validates req and walks the providers. Unconfigured providers are
// skipped but still listed in the returned *QuoteError.
func (q *Quoter) Quote(ctx context.Context, req Request) (*Quote, error) {
	if err := q.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, describe(err))
	}

	log := logging.Logger(ctx)
	qerr := &QuoteError{}
	for _, p := range q.providers {
		if !p.Configured() {
			qerr.Attempts = append(qerr.Attempts, Attempt{Provider: p.Name(), Err: ErrNotConfigured})
			continue
		}

		quote, err := p.Quote(ctx, req)
		if err == nil {
			if verr := q.validate.Struct(quote); verr != nil {
				err = fmt.Errorf("%w: %s", ErrMalformedQuote, describe(verr))
			}
		}
		if err != nil {
			log.Warn("swap provider failed", "provider", p.Name(), "error", err)
			qerr.Attempts = append(qerr.Attempts, Attempt{Provider: p.Name(), Err: err})
			continue
		}

		log.Debug("swap quote", "provider", p.Name(), "to_amount", quote.ToAmount)
		return quote, nil
	}
	return nil, qerr
}

// Prepare returns the quote's transaction addressed from the given account.
func (q *Quoter) Prepare(quote *Quote, from string) (*TxRequest, error) {
	if quote == nil {
		return nil, ErrMalformedQuote
	}
	if err := q.validate.Var(from, "required,eth_addr"); err != nil {
		return nil, fmt.Errorf("%w: from address %q", ErrInvalidRequest, from)
	}
	tx := quote.Tx
	tx.From = from
	if err := q.validate.Struct(tx); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedQuote, describe(err))
	}
	return &tx, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("field %s failed %s", fe.Namespace(), fe.Tag())
	}
	return err.Error()
}
