// Package extract turns unstable listing markup into records. Containers are found
// with an ordered locator chain and each field is read with an ordered locator set
// where the first non-empty match wins. Locator tables are static data.
package extract
