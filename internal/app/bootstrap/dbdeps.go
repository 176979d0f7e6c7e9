// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// Runtime is allocated by ConnectDB and filled in by Startup; the hooks
// receive DBDeps by value, so everything built after connecting lives
// behind that pointer.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Runtime *Runtime
}
