// Package domain contains the core entities of the tournament registration
// system: accounts, seasons, player registrations, payments, and the general
// settings record. Entities carry their own validation; persistence concerns
// live in the store packages.
package domain
