// Package containers provides testcontainer management for integration tests.
//
// This package offers helpers for starting and managing a MySQL 8 database
// container during integration testing using testcontainers-go. Repository
// tests run against it to catch MySQL-specific behavior that the in-memory
// SQLite tests cannot.
//
// Container Lifecycle:
//
// Containers are typically managed using TestMain in integration test packages:
//
//	var mysqlContainer *containers.MySQLContainer
//
//	func TestMain(m *testing.M) {
//	    var err error
//	    mysqlContainer, err = containers.NewMySQLContainer(context.Background(), nil)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    code := m.Run()
//	    _ = mysqlContainer.Terminate(context.Background())
//	    os.Exit(code)
//	}
//
// Build Tags:
//
// Integration tests using this package should use the "integration" build tag:
//
//	//go:build integration
//
// Run them with:
//
//	go test -tags=integration ./...
package containers
