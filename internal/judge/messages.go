package judge

// mockMessages maps (club, outcome) to the lines the mock bouncer draws
// from. Every club has a nonempty accept list and a nonempty reject list.
var mockMessages = map[Club]map[Outcome][]string{
	ClubBerghain: {
		OutcomeAccept: {
			"Your vibe is impeccable. The darkness suits you. Enter.",
			"No smile. No color. No hope. Perfect. Go in.",
			"You look like you haven't seen daylight in weeks. Welcome home.",
			"All black, dead eyes, sensible boots. The temple accepts you.",
		},
		OutcomeReject: {
			"Not enough black. Too much joy. Go home and rethink your life.",
			"You smiled. Nein.",
			"Those shoes have seen sunlight. Unacceptable.",
			"I can tell you Googled 'Berghain outfit'. Leave.",
			"Come back when you've suffered more.",
		},
	},
	ClubKitKat: {
		OutcomeAccept: {
			"Leather, latex and zero shame. The playground is yours.",
			"That outfit says liberation. Through the curtain you go.",
			"Finally, someone who read the dress code. Enter.",
			"Daring. Shiny. Barely there. Approved.",
		},
		OutcomeReject: {
			"Street clothes? This is not a supermarket. Out.",
			"Too much fabric, too little imagination.",
			"You look like you're here for a job interview. Wrong door.",
			"The dress code says fetish, not business casual.",
		},
	},
	ClubSisyphus: {
		OutcomeAccept: {
			"Color, chaos, glitter in places glitter shouldn't be. In you go.",
			"You look like a rave sunrise. The garden awaits.",
			"That's the right amount of ridiculous. Welcome.",
			"Playful, sweaty, slightly unhinged. Exactly our crowd.",
		},
		OutcomeReject: {
			"Too serious. This is a playground, not a boardroom.",
			"Where's the color? Where's the whimsy? Not today.",
			"You'd spend the whole night judging people. We have me for that.",
			"Monochrome and moody is the club next door.",
		},
	},
}
