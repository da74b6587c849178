package repository

import "context"

// 注文番号の採番。DBのシーケンスが持ち主で、アプリ側では値を持たない。
type OrderNumberSequence interface {
	// シーケンスがなければ作る（何度呼んでもよい）
	Ensure(ctx context.Context) error
	// 次の値を返す。ロールバックしても戻らない（欠番は許容）
	Next(ctx context.Context) (int64, error)
}
