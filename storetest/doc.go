// Package storetest provides generic test cases for indexed store implementations.
package storetest
