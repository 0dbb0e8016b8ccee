/*
Package treepath provides the path grammar of the plugin tree.

A path is a '/'-separated sequence of segments, e.g. `/Workbench/Menus/File`.
A leading '/' anchors the path at the root; `.` refers to the current node
and `..` to its parent, exactly like a filesystem path. Segment names are
restricted to the characters `[A-Za-z0-9_.$-]`.

This package centralizes validation, parsing and formatting so that the tree,
the loader and the declaration source agree on what a legal node name is.
*/
package treepath
