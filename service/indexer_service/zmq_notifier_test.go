package indexer_service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net"
	"strings"
	"testing"
	"time"

	"eternal-mint/indexer"
	"eternal-mint/model"

	"github.com/go-zeromq/zmq4"
)

func freeEndpoint(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return fmt.Sprintf("tcp://%s", l.Addr())
}

// subscribe dials ep and streams every frame; the channel closes with the socket
func subscribe(t *testing.T, ctx context.Context, ep string) <-chan string {
	t.Helper()
	sub := zmq4.NewSub(ctx)
	t.Cleanup(func() { sub.Close() })
	if err := sub.Dial(ep); err != nil {
		t.Fatalf("dial %s: %v", ep, err)
	}
	if err := sub.SetOption(zmq4.OptionSubscribe, ""); err != nil {
		t.Fatal(err)
	}

	frames := make(chan string, 16)
	go func() {
		defer close(frames)
		for {
			msg, err := sub.Recv()
			if err != nil {
				return
			}
			frames <- string(msg.Bytes())
		}
	}()
	return frames
}

func TestZMQNotifierPublishesCreatedRecordsOnce(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	ep := freeEndpoint(t)
	notifier, err := indexer.NewZMQNotifier(ctx, ep)
	if err != nil {
		t.Fatal(err)
	}
	svc := NewIndexerService(newMemDB(t), nil, notifier, Options{ChainName: "taurus"})
	t.Cleanup(func() { notifier.Close() })

	frames := subscribe(t, ctx, ep)

	// PUB drops frames until the subscription has propagated
	joined := false
	for i := 0; i < 100 && !joined; i++ {
		if err := notifier.Publish("Ready", i); err != nil {
			t.Fatal(err)
		}
		select {
		case <-frames:
			joined = true
		case <-time.After(50 * time.Millisecond):
		}
	}
	if !joined {
		t.Fatal("subscriber never joined")
	}

	ev := logEvent(model.EntityNftMinted, 10, 2, &indexer.NftMintedEvent{
		Creator: alice,
		TokenId: big.NewInt(7),
		Supply:  big.NewInt(100),
	})
	for i := 0; i < 2; i++ {
		if err := svc.HandleEvent(ctx, ev); err != nil {
			t.Fatalf("handle #%d: %v", i, err)
		}
	}
	if err := notifier.Publish("Done", struct{}{}); err != nil {
		t.Fatal(err)
	}

	var minted []string
	for done := false; !done; {
		select {
		case frame, ok := <-frames:
			if !ok {
				t.Fatal("subscriber closed early")
			}
			switch {
			case strings.HasPrefix(frame, "Ready "):
			case strings.HasPrefix(frame, "Done "):
				done = true
			default:
				minted = append(minted, frame)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("no Done frame; got %q", minted)
		}
	}

	if len(minted) != 1 {
		t.Fatalf("got %d frames for one record: %q", len(minted), minted)
	}
	entity, payload, ok := strings.Cut(minted[0], " ")
	if !ok || entity != model.EntityNftMinted {
		t.Fatalf("frame %q", minted[0])
	}
	var rec model.NftMinted
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		t.Fatalf("payload %q: %v", payload, err)
	}
	if rec.ID != EntityID(ev.Log.TxHash, 2) || rec.TokenID != "7" || rec.Creator != alice.Hex() || rec.BlockNumber != 10 {
		t.Fatalf("unexpected record %+v", rec)
	}
}
