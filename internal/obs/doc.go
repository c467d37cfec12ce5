// Package obs wires logging for the porter: logrus level and formatter,
// rotated file output through lumberjack, and an in-memory ring of recent
// entries served by the admin API.
package obs
