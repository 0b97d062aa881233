// Package mongo opens the MongoDB connection used by
// tenantstore.MongoStore.
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
//	store, err := tenantstore.NewMongoStore(ctx, db)
//
// Settings come from the MONGODB_* variables on Config. Failures are
// reported as ErrFailedToConnectToMongo joined with the driver error.
package mongo
