// Package testutil contains helper builders and utilities used across tests
// to reduce boilerplate when constructing configurations, edges and scorer
// tables. They are not intended for production usage.
package testutil
