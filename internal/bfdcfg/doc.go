// Package bfdcfg builds the per-role in-memory BFD configuration from
// keepalived-style "bfd_instance" blocks.
//
// Three daemon roles read the same configuration text through three
// independent sequential parses. The liveness-monitor role builds full
// Instance records; the redundancy (VRRP) and health-checker roles only
// register lightweight tracked references to instances by name. Which
// keyword handlers are live is decided per role when the keyword table
// is built, so shared configuration text parses identically everywhere.
package bfdcfg
