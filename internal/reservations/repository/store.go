package repository

import (
	"stablebook/pkg/config"
	mongotx "stablebook/pkg/db/mongo"
)

// Store bundles the repositories the reservation engine reads and writes,
// plus the transaction manager that scopes a batch.
type Store struct {
	Reservations ReservationRepository
	Stables      StableRepository
	Horses       HorseRepository
	HorseLocks   HorseLockRepository
	Users        UserRepository
	Slots        SlotRepository
	Promos       PromoRepository
	Overrides    OverrideRepository
	SystemConfig SystemConfigRepository
	Tx           mongotx.TransactionManager
}

func NewMongoStore(cfg *config.Config) *Store {
	client := cfg.Client.Mongo
	db := client.Database(cfg.MongoDatabaseName)
	return &Store{
		Reservations: NewMongoReservationRepository(cfg, db),
		Stables:      NewMongoStableRepository(cfg, db),
		Horses:       NewMongoHorseRepository(cfg, db),
		HorseLocks:   NewMongoHorseLockRepository(cfg, db),
		Users:        NewMongoUserRepository(cfg, db),
		Slots:        NewMongoSlotRepository(cfg, db),
		Promos:       NewMongoPromoRepository(cfg, db),
		Overrides:    NewMongoOverrideRepository(cfg, db),
		SystemConfig: NewMongoSystemConfigRepository(cfg, db),
		Tx: mongotx.NewTransactionManager(client, mongotx.TransactionOptions{
			Timeout:       cfg.TxTimeout,
			MaxCommitTime: cfg.TxMaxCommitTime,
		}),
	}
}
