package utils

func IsTracingEnabled() bool {
	return GetEnvBoolOrDefault("OTEL_TRACES_ENABLED", false)
}

func OTelServiceName() string {
	return GetEnvTrimmedOrDefault("OTEL_SERVICE_NAME", "launchwait")
}
