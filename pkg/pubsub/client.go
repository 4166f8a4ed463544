package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"go.uber.org/multierr"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/storefront-orders/pkg/config"
	"github.com/angelmondragon/storefront-orders/pkg/logger"
)

// Role selects which resources a process depends on. The outbox publisher
// only needs topics; the email worker only needs its subscription.
type Role int

const (
	RolePublisher Role = iota
	RoleConsumer
)

func (r Role) String() string {
	if r == RoleConsumer {
		return "consumer"
	}
	return "publisher"
}

const (
	kindTopic        = "topics"
	kindSubscription = "subscriptions"
)

// Client wraps the Pub/Sub v2 client with storefront resource naming.
type Client struct {
	client    *pubsub.Client
	projectID string
	cfg       config.PubSubConfig
	role      Role
}

var errProjectIDRequired = errors.New("gcp project id is required")

// clientOptions picks explicit credentials when configured. Otherwise the
// client falls back to application default credentials, or to the emulator
// when PUBSUB_EMULATOR_HOST is set.
func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(gcp.CredentialsJSON))}
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		return []option.ClientOption{option.WithCredentialsFile(gcp.ApplicationCredentials)}
	}
	return nil
}

// NewClient connects and verifies that every resource the role depends on
// exists.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, role Role, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	psClient, err := pubsub.NewClient(ctx, projectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c := &Client{client: psClient, projectID: projectID, cfg: cfg, role: role}
	if err := c.Ping(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "pubsub_role", role.String()), "pubsub client initialized")
	}
	return c, nil
}

// dependencies lists the (kind, name) pairs the role requires.
func dependencies(cfg config.PubSubConfig, role Role) ([][2]string, error) {
	var deps [][2]string
	add := func(kind, name string) {
		if n := strings.TrimSpace(name); n != "" {
			deps = append(deps, [2]string{kind, n})
		}
	}
	switch role {
	case RoleConsumer:
		add(kindSubscription, cfg.NotificationSubscription)
	default:
		add(kindTopic, cfg.OrdersTopic)
		add(kindTopic, cfg.NotificationTopic)
	}
	if len(deps) == 0 {
		return nil, fmt.Errorf("no pubsub resources configured for %s role", role)
	}
	return deps, nil
}

// Ping checks that the role's topics or subscriptions exist.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("pubsub client not initialized")
	}
	deps, err := dependencies(c.cfg, c.role)
	if err != nil {
		return err
	}
	var errs error
	for _, dep := range deps {
		errs = multierr.Append(errs, c.exists(ctx, dep[0], dep[1]))
	}
	return errs
}

func (c *Client) exists(ctx context.Context, kind, name string) error {
	full := resourceName(c.projectID, kind, name)
	var err error
	if kind == kindTopic {
		_, err = c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: full})
	} else {
		_, err = c.client.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: full})
	}
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("%s does not exist", full)
	}
	return fmt.Errorf("checking %s: %w", full, err)
}

// Subscription returns a subscriber for a subscription id or full name.
func (c *Client) Subscription(name string) *pubsub.Subscriber {
	if c == nil || c.client == nil {
		return nil
	}
	full := resourceName(c.projectID, kindSubscription, name)
	if full == "" {
		return nil
	}
	return c.client.Subscriber(full)
}

// NotificationSubscription returns the email consumer's subscriber with its
// flow control applied.
func (c *Client) NotificationSubscription() *pubsub.Subscriber {
	if c == nil {
		return nil
	}
	sub := c.Subscription(c.cfg.NotificationSubscription)
	if sub != nil && c.cfg.NotificationMaxOutstanding > 0 {
		sub.ReceiveSettings.MaxOutstandingMessages = c.cfg.NotificationMaxOutstanding
	}
	return sub
}

// Publisher returns a publisher for a topic id or full name.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	full := resourceName(c.projectID, kindTopic, name)
	if full == "" {
		return nil
	}
	return c.client.Publisher(full)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// resourceName expands an id to projects/<project>/<kind>/<id>. Names that are
// already fully qualified pass through.
func resourceName(projectID, kind, name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/"+kind+"/") {
		return n
	}
	if projectID == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/%s/%s", projectID, kind, n)
}
