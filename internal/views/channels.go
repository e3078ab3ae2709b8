package views

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// ChannelProfile resolves a channel by username, attaching subscriber
// counts and the viewer's subscription state.
func (c *Composer) ChannelProfile(ctx context.Context, username, viewerID string) (ChannelProfile, error) {
	p := From("users", "u").
		Match("u.username = ?", username).
		Compute("(SELECT count(*) FROM subscriptions s WHERE s.channel_id = u.id)", "subscriber_count").
		Compute("(SELECT count(*) FROM subscriptions s WHERE s.subscriber_id = u.id)", "subscribed_to_count").
		Compute("EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = ?)", "is_subscribed", viewerID).
		Project("u.id", "u.username", "u.full_name", "u.avatar_url", "u.cover_url", "u.email", "u.created_at")

	profiles, err := collect(ctx, c.pool, p, func(rows pgx.Rows) (ChannelProfile, error) {
		var cp ChannelProfile
		err := rows.Scan(&cp.ID, &cp.Username, &cp.FullName, &cp.AvatarURL, &cp.CoverURL,
			&cp.Email, &cp.CreatedAt, &cp.SubscriberCount, &cp.SubscribedToCount, &cp.IsSubscribed)
		return cp, err
	})
	if err != nil {
		return ChannelProfile{}, err
	}
	if len(profiles) == 0 {
		return ChannelProfile{}, ErrScopeNotFound
	}
	return profiles[0], nil
}

// ChannelSubscribers lists who subscribes to the channel, newest first. Each
// entry carries the subscriber's own follower count and whether the viewer
// subscribes to them in turn.
func (c *Composer) ChannelSubscribers(ctx context.Context, channelID, viewerID string) ([]ChannelSubscriber, error) {
	if err := c.requireUser(ctx, channelID); err != nil {
		return nil, err
	}

	p := From("subscriptions", "sub").
		Match("sub.channel_id = ?", channelID).
		Join("users", "u", "u.id = sub.subscriber_id").
		Compute("(SELECT count(*) FROM subscriptions s2 WHERE s2.channel_id = u.id)", "subscriber_count").
		Compute("EXISTS (SELECT 1 FROM subscriptions s2 WHERE s2.channel_id = u.id AND s2.subscriber_id = ?)", "is_subscribed", viewerID).
		Sort("sub.created_at", true).
		Project("u.id", "u.username", "u.full_name", "u.avatar_url", "sub.created_at")

	return collect(ctx, c.pool, p, func(rows pgx.Rows) (ChannelSubscriber, error) {
		var cs ChannelSubscriber
		err := rows.Scan(&cs.Subscriber.ID, &cs.Subscriber.Username, &cs.Subscriber.FullName,
			&cs.Subscriber.AvatarURL, &cs.SubscribedAt, &cs.SubscriberCount, &cs.IsSubscribed)
		return cs, err
	})
}

// SubscribedChannels lists the channels a user subscribes to, newest first,
// with each channel's subscriber total.
func (c *Composer) SubscribedChannels(ctx context.Context, subscriberID string) ([]SubscribedChannel, error) {
	if err := c.requireUser(ctx, subscriberID); err != nil {
		return nil, err
	}

	p := From("subscriptions", "sub").
		Match("sub.subscriber_id = ?", subscriberID).
		Join("users", "ch", "ch.id = sub.channel_id").
		Compute("(SELECT count(*) FROM subscriptions s2 WHERE s2.channel_id = ch.id)", "subscribed_channel_count").
		Sort("sub.created_at", true).
		Project("ch.id", "ch.username", "ch.full_name", "ch.avatar_url", "sub.created_at")

	return collect(ctx, c.pool, p, func(rows pgx.Rows) (SubscribedChannel, error) {
		var sc SubscribedChannel
		err := rows.Scan(&sc.Channel.ID, &sc.Channel.Username, &sc.Channel.FullName,
			&sc.Channel.AvatarURL, &sc.SubscribedAt, &sc.SubscribedChannelCount)
		return sc, err
	})
}

// requireUser distinguishes "no rows because the scoping user is unknown"
// from a legitimately empty list.
func (c *Composer) requireUser(ctx context.Context, userID string) error {
	p := From("users", "u").
		Match("u.id = ?", userID).
		Project("u.id")

	ids, err := collect(ctx, c.pool, p, func(rows pgx.Rows) (string, error) {
		var id string
		err := rows.Scan(&id)
		return id, err
	})
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrScopeNotFound
	}
	return nil
}
