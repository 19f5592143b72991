package sql

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel/attribute"
)

// Open opens a database handle whose queries are traced with otelsql.
// attrs are attached to every span, typically the semconv db.system value.
func Open(driverName, dataSourceName string, attrs ...attribute.KeyValue) (*sql.DB, error) {
	db, err := otelsql.Open(driverName, dataSourceName, otelsql.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}

	return db, nil
}
