// Package logger provides a singleton zap logger with context-based scoping.
//
// Init is called once from main; request middlewares attach a scoped logger
// (request_id, method, path) to the context and everything downstream logs
// through From(ctx):
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("LoginLocal"))
//	log.Info("login rejected", logger.Strategy("local"))
//
// Without a context the singleton is used:
//
//	logger.L().Info("server started")
//
// Environments: "dev" writes colored console output, "prod" writes JSON.
package logger
