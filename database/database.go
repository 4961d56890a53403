// Package database - Handles all interaction with ArangoDB
package database

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = InitLogger() // setup the logger

// DBConnection is the structure that defined the database engine and collections
type DBConnection struct {
	Collections map[string]arangodb.Collection
	Database    arangodb.Database
}

// indexConfig holds one single-field index definition
type indexConfig struct {
	Collection string
	IdxName    string
	IdxField   string
}

// compositeIndexConfig holds one multi-field index definition
type compositeIndexConfig struct {
	Collection string
	IdxName    string
	IdxFields  []string
	Unique     bool
	Sparse     bool
}

var initDone = false          // has the data been initialized
var dbConnection DBConnection // database connection definition

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex {                     // not found return default
		return defVal
	}
	return val // return value for env var
}

// InitLogger sets up the Zap Logger to log to the console in a human readable format
func InitLogger() *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	logger, _ := prodConfig.Build()
	return logger
}

func dbConnectionConfig(endpoint connection.Endpoint, dbuser string, dbpass string) connection.HttpConfiguration {
	return connection.HttpConfiguration{
		Authentication: connection.NewBasicAuth(dbuser, dbpass),
		Endpoint:       endpoint,
		ContentType:    connection.ApplicationJSON,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 90 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// InitializeDatabase is the function for connecting to the db engine, creating the database and collections
func InitializeDatabase() DBConnection {
	const initialInterval = 10 * time.Second
	const maxInterval = 2 * time.Minute

	var db arangodb.Database
	var collections map[string]arangodb.Collection
	const databaseName = "compliance"

	ctx := context.Background()

	if initDone {
		return dbConnection
	}

	False := false
	True := true
	dbhost := GetEnvDefault("ARANGO_HOST", "localhost")
	dbport := GetEnvDefault("ARANGO_PORT", "8529")
	dbuser := GetEnvDefault("ARANGO_USER", "root")
	dbpass := GetEnvDefault("ARANGO_PASS", "mypassword")
	dburl := GetEnvDefault("ARANGO_URL", "http://"+dbhost+":"+dbport)

	var client arangodb.Client

	//
	// Database connection with backoff retry
	//

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = 0 // Set to 0 for indefinite retries

	err := backoff.RetryNotify(func() error {
		fmt.Println("Attempting to connect to ArangoDB")
		endpoint := connection.NewRoundRobinEndpoints([]string{dburl})
		conn := connection.NewHttpConnection(dbConnectionConfig(endpoint, dbuser, dbpass))

		client = arangodb.NewClient(conn)

		// Ask the version of the server
		versionInfo, err := client.Version(context.Background())
		if err != nil {
			return err
		}

		logger.Sugar().Infof("Database has version '%s' and license '%s'\n", versionInfo.Version, versionInfo.License)
		return nil

	}, bo, func(err error, _ time.Duration) {
		fmt.Printf("Retrying connection to ArangoDB: %v\n", err)
	})

	if err != nil {
		logger.Sugar().Fatalf("Backoff Error %v\n", err)
	}

	//
	// Database creation
	//

	exists := false
	dblist, _ := client.Databases(ctx)

	for _, dbinfo := range dblist {
		if dbinfo.Name() == databaseName {
			exists = true
			break
		}
	}

	if exists {
		var options arangodb.GetDatabaseOptions
		if db, err = client.GetDatabase(ctx, databaseName, &options); err != nil {
			logger.Sugar().Fatalf("Failed to get Database: %v", err)
		}
	} else {
		if db, err = client.CreateDatabase(ctx, databaseName, nil); err != nil {
			logger.Sugar().Fatalf("Failed to create Database: %v", err)
		}
	}

	//
	// Collection creation for document storage
	//

	collections = make(map[string]arangodb.Collection)
	collectionNames := []string{"scan", "finding", "finding_history", "control_metadata", "credential"}

	for _, collectionName := range collectionNames {
		var col arangodb.Collection

		exists, _ = db.CollectionExists(ctx, collectionName)
		if exists {
			var options arangodb.GetCollectionOptions
			if col, err = db.GetCollection(ctx, collectionName, &options); err != nil {
				logger.Sugar().Fatalf("Failed to use collection: %v", err)
			}
		} else {
			if col, err = db.CreateCollection(ctx, collectionName, nil); err != nil {
				logger.Sugar().Fatalf("Failed to create collection: %v", err)
			}
		}

		collections[collectionName] = col
	}

	//
	// Index creation
	//

	idxList := []indexConfig{
		// Scan collection indexes - tenant polling and audit ordering
		{Collection: "scan", IdxName: "scan_tenant", IdxField: "tenant_id"},
		{Collection: "scan", IdxName: "scan_status", IdxField: "status"},
		{Collection: "scan", IdxName: "scan_started_at", IdxField: "started_at"},

		// Finding collection indexes - live results are always tenant scoped
		{Collection: "finding", IdxName: "finding_tenant", IdxField: "tenant_id"},
		{Collection: "finding", IdxName: "finding_framework", IdxField: "framework"},
		{Collection: "finding", IdxName: "finding_scan", IdxField: "scan_key"},
		{Collection: "finding", IdxName: "finding_status", IdxField: "scan_status"},
		{Collection: "finding", IdxName: "finding_remediation", IdxField: "remediation_status"},

		// History collection indexes - trend queries replay by archive time
		{Collection: "finding_history", IdxName: "history_tenant", IdxField: "tenant_id"},
		{Collection: "finding_history", IdxName: "history_framework", IdxField: "framework"},
		{Collection: "finding_history", IdxName: "history_scan", IdxField: "archived_by_scan"},
		{Collection: "finding_history", IdxName: "history_archived_at", IdxField: "archived_at"},

		// Credential collection indexes
		{Collection: "credential", IdxName: "credential_tenant", IdxField: "tenant_id"},
		{Collection: "credential", IdxName: "credential_active", IdxField: "active"},
	}

	for _, idx := range idxList {
		found := false

		if indexes, err := collections[idx.Collection].Indexes(ctx); err == nil {
			for _, index := range indexes {
				if idx.IdxName == index.Name {
					found = true
					break
				}
			}
		}

		if !found {
			indexOptions := arangodb.CreatePersistentIndexOptions{
				Unique: &False,
				Sparse: &False,
				Name:   idx.IdxName,
			}

			_, _, err = collections[idx.Collection].EnsurePersistentIndex(ctx, []string{idx.IdxField}, &indexOptions)
			if err != nil {
				logger.Sugar().Fatalln("Error creating index:", err)
			} else {
				logger.Sugar().Infof("Created index: %s on %s.%s", idx.IdxName, idx.Collection, idx.IdxField)
			}
		}
	}

	//
	// Composite indexes
	//

	compositeIdxList := []compositeIndexConfig{
		// One finding per control within a scan: the normalizer collapses
		// duplicates before insert, the index enforces it at the store.
		{Collection: "finding", IdxName: "finding_scan_control_unique", IdxFields: []string{"scan_key", "control_id"}, Unique: true},
		// Live findings lookup by tenant + framework (archive scope)
		{Collection: "finding", IdxName: "finding_tenant_framework", IdxFields: []string{"tenant_id", "framework"}},
		// One durable metadata record per (tenant, control)
		{Collection: "control_metadata", IdxName: "metadata_tenant_control_unique", IdxFields: []string{"tenant_id", "control_id"}, Unique: true},
		// Exclusivity check: one in_progress scan per tenant at a time
		{Collection: "scan", IdxName: "scan_tenant_status", IdxFields: []string{"tenant_id", "status"}},
		// Trend replay by tenant + archive time
		{Collection: "finding_history", IdxName: "history_tenant_archived", IdxFields: []string{"tenant_id", "archived_at"}},
		// Active credential lookup
		{Collection: "credential", IdxName: "credential_tenant_active", IdxFields: []string{"tenant_id", "active"}},
	}

	for _, idx := range compositeIdxList {
		found := false
		if indexes, err := collections[idx.Collection].Indexes(ctx); err == nil {
			for _, index := range indexes {
				if idx.IdxName == index.Name {
					found = true
					break
				}
			}
		}
		if !found {
			unique := &False
			if idx.Unique {
				unique = &True
			}
			sparse := &False
			if idx.Sparse {
				sparse = &True
			}
			compositeIdxOptions := arangodb.CreatePersistentIndexOptions{
				Unique: unique,
				Sparse: sparse,
				Name:   idx.IdxName,
			}
			_, _, err = collections[idx.Collection].EnsurePersistentIndex(ctx, idx.IdxFields, &compositeIdxOptions)
			if err != nil {
				logger.Sugar().Fatalln("Error creating composite index:", err)
			} else {
				logger.Sugar().Infof("Created composite index: %s on %s", idx.IdxName, idx.Collection)
			}
		}
	}

	initDone = true

	dbConnection = DBConnection{
		Database:    db,
		Collections: collections,
	}

	logger.Sugar().Infof("Database initialization complete for compliance scan storage")

	return dbConnection
}
