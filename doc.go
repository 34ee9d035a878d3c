// Package widgetprefs provides the widget catalog and per-profile visibility
// preferences behind a dashboard.
//
// A Registry holds the ordered, immutable set of Widget descriptors. A Manager
// loads, seeds, toggles and resets one VisibilityMap per profile on top of a
// pluggable Storage backend (memory, files, SQLite, PostgreSQL, S3), with an
// optional Cache (in-memory, Redis) and optional encryption at rest. The
// rendering surface asks Registry.Visible for the widgets it should draw.
package widgetprefs
