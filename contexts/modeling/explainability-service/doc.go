// Package explainabilityservice produces per-feature attributions for
// ensemble predictions. Attribution methods (SHAP, LIME) live behind a port;
// the service persists the attribution summary and writes the full payload to
// the object store as a JSON artifact.
package explainabilityservice
