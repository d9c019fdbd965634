package service

import (
	"testing"
	"time"

	"github.com/fixitnow/fixitnow/errs"
	"github.com/fixitnow/fixitnow/id"
	"github.com/fixitnow/fixitnow/types"
	"github.com/fixitnow/fixitnow/webpush"
)

func TestService_Notify_Dedup(t *testing.T) {
	svc, fb, _, _ := testService(t)

	sender := createTestUser(t, types.UserRoleCustomer)
	receiver := createTestUser(t, types.UserRoleProvider)

	base := time.Now().UTC()

	first, err := svc.Notify(asUser(sender), types.CreateNotification{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    "Hi",
		SentAt:     base,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Same content 2s later lands inside the window and collapses.
	dup, err := svc.Notify(asUser(sender), types.CreateNotification{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    "Hi",
		SentAt:     base.Add(time.Second * 2),
	})
	if err != nil {
		t.Fatal(err)
	}
	if dup.ID != first.ID {
		t.Fatalf("got a second notification %q, want reuse of %q", dup.ID, first.ID)
	}

	// Same content past the window is a fresh notification.
	later, err := svc.Notify(asUser(sender), types.CreateNotification{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    "Hi",
		SentAt:     base.Add(time.Second * 12),
	})
	if err != nil {
		t.Fatal(err)
	}
	if later.ID == first.ID {
		t.Fatal("notification past the dedup window was collapsed")
	}

	nn, err := svc.Notifications(asUser(receiver), types.ListNotifications{})
	if err != nil {
		t.Fatal(err)
	}
	if len(nn) != 2 {
		t.Fatalf("got %d notifications, want 2", len(nn))
	}

	waitBackground(svc)

	if got := fb.notificationsFor(receiver.ID); len(got) != 2 {
		t.Fatalf("got %d published notifications, want only the created ones", len(got))
	}
}

func TestService_Notifications_ReadFlow(t *testing.T) {
	svc, _, _, _ := testService(t)

	sender := createTestUser(t, types.UserRoleCustomer)
	receiver := createTestUser(t, types.UserRoleProvider)
	stranger := createTestUser(t, types.UserRoleCustomer)

	n, err := svc.Notify(asUser(sender), types.CreateNotification{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    "New booking request",
		SentAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("count_unread", func(t *testing.T) {
		count, err := svc.UnreadNotificationCount(asUser(receiver))
		if err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Fatalf("got count %d, want 1", count)
		}
	})

	t.Run("stranger_cannot_mark", func(t *testing.T) {
		err := svc.MarkNotificationRead(asUser(stranger), types.ReadNotification{NotificationID: n.ID})
		if !errs.IsPermissionDenied(err) {
			t.Fatalf("got %v, want permission denied", err)
		}
	})

	t.Run("unknown_notification", func(t *testing.T) {
		err := svc.MarkNotificationRead(asUser(receiver), types.ReadNotification{NotificationID: id.Generate()})
		if !errs.IsNotFound(err) {
			t.Fatalf("got %v, want not found", err)
		}
	})

	t.Run("receiver_marks_read_idempotently", func(t *testing.T) {
		for range 2 {
			if err := svc.MarkNotificationRead(asUser(receiver), types.ReadNotification{NotificationID: n.ID}); err != nil {
				t.Fatal(err)
			}
		}

		unread, err := svc.Notifications(asUser(receiver), types.ListNotifications{UnreadOnly: true})
		if err != nil {
			t.Fatal(err)
		}
		if len(unread) != 0 {
			t.Fatalf("got %d unread, want 0", len(unread))
		}
	})

	waitBackground(svc)
}

func TestService_MarkAllNotificationsRead(t *testing.T) {
	svc, _, _, _ := testService(t)

	sender := createTestUser(t, types.UserRoleCustomer)
	receiver := createTestUser(t, types.UserRoleProvider)

	for i, content := range []string{"one", "two", "three"} {
		_, err := svc.Notify(asUser(sender), types.CreateNotification{
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			Content:    content,
			SentAt:     time.Now().UTC().Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	if err := svc.MarkAllNotificationsRead(asUser(receiver)); err != nil {
		t.Fatal(err)
	}

	count, err := svc.UnreadNotificationCount(asUser(receiver))
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("got count %d, want 0", count)
	}

	waitBackground(svc)
}

func TestService_MarkNotificationsFromSenderRead(t *testing.T) {
	svc, _, _, _ := testService(t)

	sender := createTestUser(t, types.UserRoleCustomer)
	other := createTestUser(t, types.UserRoleCustomer)
	receiver := createTestUser(t, types.UserRoleProvider)

	for _, s := range []types.User{sender, other} {
		_, err := svc.Notify(asUser(s), types.CreateNotification{
			SenderID:   s.ID,
			ReceiverID: receiver.ID,
			Content:    "message from " + s.Name,
			SentAt:     time.Now().UTC(),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	t.Run("unknown_sender", func(t *testing.T) {
		err := svc.MarkNotificationsFromSenderRead(asUser(receiver), types.ReadNotificationsFromSender{
			SenderID: id.Generate(),
		})
		if !errs.IsNotFound(err) {
			t.Fatalf("got %v, want not found", err)
		}
	})

	t.Run("only_that_senders_cleared", func(t *testing.T) {
		err := svc.MarkNotificationsFromSenderRead(asUser(receiver), types.ReadNotificationsFromSender{
			SenderID: sender.ID,
		})
		if err != nil {
			t.Fatal(err)
		}

		unread, err := svc.Notifications(asUser(receiver), types.ListNotifications{UnreadOnly: true})
		if err != nil {
			t.Fatal(err)
		}
		if len(unread) != 1 || unread[0].SenderID != other.ID {
			t.Fatalf("got unread %+v, want only the other sender's", unread)
		}
	})

	waitBackground(svc)
}

func TestService_Notify_WebPushWhenOffline(t *testing.T) {
	svc, _, fp, push := testService(t)
	push.enabled = true

	sender := createTestUser(t, types.UserRoleCustomer)
	receiver := createTestUser(t, types.UserRoleProvider)

	_, err := svc.CreatePushSubscription(asUser(receiver), types.CreatePushSubscription{
		Endpoint: "https://push.example.com/" + receiver.ID,
		P256dh:   "key",
		Auth:     "auth",
	})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("offline_receiver_gets_push", func(t *testing.T) {
		_, err := svc.Notify(asUser(sender), types.CreateNotification{
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			Content:    "You have a new message",
			SentAt:     time.Now().UTC(),
		})
		if err != nil {
			t.Fatal(err)
		}

		waitBackground(svc)

		sent := push.sentTo()
		if len(sent) != 1 || sent[0].UserID != receiver.ID {
			t.Fatalf("got pushes %+v, want one to the receiver", sent)
		}
	})

	t.Run("online_receiver_gets_none", func(t *testing.T) {
		fp.setOnline(receiver.ID, true)

		_, err := svc.Notify(asUser(sender), types.CreateNotification{
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			Content:    "Another message",
			SentAt:     time.Now().UTC(),
		})
		if err != nil {
			t.Fatal(err)
		}

		waitBackground(svc)

		if sent := push.sentTo(); len(sent) != 1 {
			t.Fatalf("got %d pushes, want still 1", len(sent))
		}
	})

	t.Run("gone_subscription_is_dropped", func(t *testing.T) {
		fp.setOnline(receiver.ID, false)
		push.fail = webpush.ErrSubscriptionGone

		_, err := svc.Notify(asUser(sender), types.CreateNotification{
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			Content:    "Yet another message",
			SentAt:     time.Now().UTC(),
		})
		if err != nil {
			t.Fatal(err)
		}

		waitBackground(svc)

		subs, err := svc.Postgres.PushSubscriptions(asUser(receiver), receiver.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(subs) != 0 {
			t.Fatalf("got %d subscriptions, want the stale one removed", len(subs))
		}
	})
}
