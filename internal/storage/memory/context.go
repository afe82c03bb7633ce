package memory

import "context"

// trxCtxKey is the context key under which an open transaction's id lives.
type trxCtxKey struct{}

func withTrx(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, trxCtxKey{}, id)
}

// trxFrom returns the transaction id carried by ctx.  An empty id counts as
// none.
func trxFrom(ctx context.Context) (string, bool) {
	id, _ := ctx.Value(trxCtxKey{}).(string)
	return id, id != ""
}
