// Package graphql assembles the root schema for the reporting API.
package graphql

import (
	"github.com/graphql-go/graphql"
	"github.com/scanguard/compliance-backend/database"
	"github.com/scanguard/compliance-backend/graphql/modules/compliance"
)

var db database.DBConnection

// InitDB stores the shared database connection for the resolvers.
func InitDB(conn database.DBConnection) {
	db = conn
}

// CreateSchema builds the root query schema from the module query fields.
func CreateSchema() (graphql.Schema, error) {
	fields := graphql.Fields{}
	for name, field := range compliance.GetQueryFields(db) {
		fields[name] = field
	}

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: fields,
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: rootQuery,
	})
}
