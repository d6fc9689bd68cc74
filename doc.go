// Package catlog is a hierarchical category logging framework. Categories
// are named with dotted paths ("app.db.pool") and form a tree under a root
// category. Each category has a priority, below which events are dropped
// (NOTSET categories inherit from their nearest ancestor), and a set of
// appenders. An event logged to a category goes to that category's
// appenders and then, unless additivity is switched off, to those of every
// ancestor. Appenders may have a threshold of their own and most format
// events with a layout: basic, simple or pattern.
//
// Categories live in a Hierarchy. DefaultHierarchy serves the package
// level helpers; applications that need isolation create their own. The
// propconfig package builds a whole hierarchy from a property file.
package catlog
