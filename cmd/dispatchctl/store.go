package main

import (
	"errors"
	"fmt"

	"github.com/gbl08ma/firedispatch/dispatch"
	"github.com/gbl08ma/firedispatch/memstore"
	"github.com/gbl08ma/firedispatch/types"
	"github.com/gbl08ma/keybox"
	"github.com/gbl08ma/sqalx"
	"github.com/jmoiron/sqlx"

	// postgres driver for sqlx
	_ "github.com/lib/pq"
)

// openCoordinator returns a Coordinator over the configured data source and a
// function releasing it
func openCoordinator() (*dispatch.Coordinator, func(), error) {
	if rootFlags.seed != "" {
		store, err := memstore.LoadFile(rootFlags.seed)
		if err != nil {
			return nil, nil, fmt.Errorf("load seed: %w", err)
		}
		return dispatch.NewCoordinator(store), func() {}, nil
	}

	secrets, err := keybox.Open(rootFlags.secrets)
	if err != nil {
		return nil, nil, fmt.Errorf("open keybox: %w", err)
	}
	databaseURI, present := secrets.Get("databaseURI")
	if !present {
		return nil, nil, errors.New("database connection string not present in keybox")
	}
	rdb, err := sqlx.Open("postgres", databaseURI)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := rdb.Ping(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	node, err := sqalx.New(rdb)
	if err != nil {
		rdb.Close()
		return nil, nil, err
	}
	return dispatch.NewCoordinator(types.NewStore(node)), func() { rdb.Close() }, nil
}
