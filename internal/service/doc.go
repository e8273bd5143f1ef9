// Package service contains the application-level use cases for customer
// data. It coordinates the store (defined in internal/store) to resolve,
// create and update customers, and owns the transaction boundary of every
// write.
//
// The service depends on domain entities and the store interfaces only,
// never on a specific database implementation.
package service
