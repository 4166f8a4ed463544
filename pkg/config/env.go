package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "STOREFRONT_APP_ENV"
	EnvPort     = "STOREFRONT_APP_PORT"
	EnvLogLevel = "STOREFRONT_LOG_LEVEL"

	EnvDBDSN  = "STOREFRONT_DB_DSN"
	EnvDBHost = "STOREFRONT_DB_HOST"
	EnvDBUser = "STOREFRONT_DB_USER"
	EnvDBName = "STOREFRONT_DB_NAME"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvJWTSecret  = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer  = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins = "STOREFRONT_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "STOREFRONT_GCP_PROJECT_ID"

	EnvPubSubOrdersTopic       = "STOREFRONT_PUBSUB_ORDERS_TOPIC"
	EnvPubSubNotificationTopic = "STOREFRONT_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotificationSub   = "STOREFRONT_PUBSUB_NOTIFICATION_SUBSCRIPTION"

	EnvSMTPHost = "STOREFRONT_SMTP_HOST"
	EnvSMTPFrom = "STOREFRONT_SMTP_FROM"
)

// dsnPartEnvVars must all be set when no DSN is provided.
var dsnPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
