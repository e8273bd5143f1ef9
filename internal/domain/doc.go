// Package domain contains the customer entities of the data access layer:
// customers, their addresses and shopping lists, and the result of matching
// an inbound identification against stored customers. It has no knowledge of
// how these entities are persisted.
package domain
