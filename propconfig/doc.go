// Package propconfig configures a catlog hierarchy from a flat property
// store. A configuration names appenders and binds them to categories:
//
//	rootCategory=WARN, A
//	category.app.db=DEBUG, F
//	additivity.app.db=false
//
//	appender.A=ConsoleAppender
//	appender.A.layout=PatternLayout
//	appender.A.layout.ConversionPattern=%d [%p] %c: %m%n
//
//	appender.F=FileAppender
//	appender.F.fileName=db.log
//	appender.F.threshold=INFO
//	appender.F.layout=BasicLayout
//
// Every appender block is built first, then the root and each category
// is bound in turn: its appenders are cleared, its priority set and the
// listed appenders attached. A category value must contain a comma even
// when it lists no appenders ("DEBUG," not "DEBUG").
//
// Appender and layout kinds are looked up by the last dot separated segment
// of their type value, so "org.apache.log4j.ConsoleAppender" works as well.
// Further kinds can be added with RegisterAppender and RegisterLayout, as
// the packages under appenders/ do.
//
// All failures are reported as *ConfigureFailure; use errors.Is with the
// Err* values to tell them apart.
package propconfig
