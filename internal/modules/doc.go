// Package modules contains the self-contained application features.
//
// Each subdirectory implements module.Module. The active set is listed in
// internal/app and booted by internal/server in that order.
package modules
