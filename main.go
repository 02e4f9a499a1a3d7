package main

import (
	"log"
	"os"

	"github.com/gbl08ma/firedispatch/dispatch"
	"github.com/gbl08ma/firedispatch/memstore"
	"github.com/gbl08ma/firedispatch/types"
	"github.com/gbl08ma/keybox"
	"github.com/gbl08ma/sqalx"
	"github.com/jmoiron/sqlx"

	// postgres driver for sqlx
	_ "github.com/lib/pq"
)

var (
	rdb           *sqlx.DB
	rootSqalxNode sqalx.Node
	secrets       *keybox.Keybox
	coordinator   *dispatch.Coordinator
	mainLog       = log.New(os.Stdout, "", log.Ldate|log.Ltime)
	dispatchLog   = log.New(os.Stdout, "dispatch", log.Ldate|log.Ltime)
	feedLog       = log.New(os.Stdout, "feed", log.Ldate|log.Ltime)
	webLog        = log.New(os.Stdout, "web", log.Ldate|log.Ltime)

	// GitCommit is provided by govvv at compile-time
	GitCommit = "???"
	// BuildDate is provided by govvv at compile-time
	BuildDate = "???"
)

func main() {
	var err error
	mainLog.Println("Server starting, opening keybox...")
	secrets, err = keybox.Open(SecretsPath)
	if err != nil {
		mainLog.Fatalln(err)
	}
	mainLog.Println("Keybox opened")

	store, err := openStore()
	if err != nil {
		mainLog.Fatalln(err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	coordinator = dispatch.NewCoordinator(store).
		WithLogger(dispatchLog).
		WithNotifications(incidentNotifications)

	go NotificationHandler(incidentNotifications)
	go StatsSender()
	go FeedServer()

	mainLog.Println("Build", GitCommit, "from", BuildDate)
	APIserver()
}

// openStore opens the database named in the keybox. When there is none, debug
// builds fall back to the in-memory store loaded from the seed file
func openStore() (types.Store, error) {
	databaseURI, present := secrets.Get("databaseURI")
	if !present {
		if _, err := os.Stat(SeedPath); DEBUG && err == nil {
			mainLog.Println("Database connection string not present in keybox, loading", SeedPath)
			return memstore.LoadFile(SeedPath)
		}
		mainLog.Fatalln("Database connection string not present in keybox")
	}

	mainLog.Println("Opening database...")
	var err error
	rdb, err = sqlx.Open("postgres", databaseURI)
	if err != nil {
		return nil, err
	}

	err = rdb.Ping()
	if err != nil {
		return nil, err
	}
	rdb.SetMaxOpenConns(MaxDBconnectionPoolSize)

	rootSqalxNode, err = sqalx.New(rdb)
	if err != nil {
		return nil, err
	}
	mainLog.Println("Database opened")
	return types.NewStore(rootSqalxNode), nil
}
