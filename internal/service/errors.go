package service

import (
	"errors"
	"fmt"
)

// Sentinel errors carry the user-facing notice as their message. Handlers
// match them with errors.Is and send Error() back as the response detail.
var (
	ErrInsufficientStock    = errors.New("Estoque insuficiente")
	ErrEmptyCart            = errors.New("O carrinho está vazio")
	ErrCheckoutPending      = errors.New("Há uma venda aguardando confirmação de pagamento")
	ErrNoPendingCheckout    = errors.New("Nenhuma venda aguardando confirmação")
	ErrInvalidPaymentMethod = errors.New("Forma de pagamento inválida")
	ErrProductNotFound      = errors.New("Produto não encontrado")
	ErrLineNotFound         = errors.New("Produto não está no carrinho")
	ErrInventoryNotFound    = errors.New("Estoque não cadastrado para este produto")
	ErrSaleNotFound         = errors.New("Venda não encontrada")
	ErrDuplicateBarcode     = errors.New("Código de barras já cadastrado")
	ErrInvalidCredentials   = errors.New("Usuário ou senha inválidos")
	ErrInvalidToken         = errors.New("Token inválido ou expirado")
)

// noticeError specialises a sentinel with a more precise notice, e.g. the
// product name or the quantity still available.
type noticeError struct {
	kind   error
	notice string
}

func (e *noticeError) Error() string { return e.notice }
func (e *noticeError) Unwrap() error { return e.kind }

func notice(kind error, format string, args ...interface{}) error {
	return &noticeError{kind: kind, notice: fmt.Sprintf(format, args...)}
}
