package tx

import (
	"context"

	"github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/avito-tech/go-transaction-manager/trm/manager"
	"github.com/avito-tech/go-transaction-manager/trm/settings"
	"github.com/jackc/pgx/v5"
)

// Manager открывает транзакцию и кладет ее в контекст, querier.Querier
// достает ее оттуда. Вложенные Do переиспользуют внешнюю транзакцию.
type Manager struct {
	trm      *manager.Manager
	settings pgxv5.Settings
}

func New(db pgxv5.Transactional) *Manager {
	return &Manager{
		trm: manager.Must(pgxv5.NewDefaultFactory(db)),
		// счетчик номеров заказов сериализуется блокировкой строки,
		// serializable тут дал бы лишние 40001
		settings: pgxv5.MustSettings(
			settings.Must(),
			pgxv5.WithTxOptions(pgx.TxOptions{IsoLevel: pgx.ReadCommitted}),
		),
	}
}

func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.trm.DoWithSettings(ctx, m.settings, fn)
}
