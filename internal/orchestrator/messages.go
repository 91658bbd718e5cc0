package orchestrator

// Canned client-side texts. Everything the server authors arrives via
// the gateway; these cover the bootstrap, extraction re-prompts, and the
// per-route apologies shown when a gateway call fails.
const (
	msgGreeting     = "Hello! I'm your Mentor AI counsellor. What's your name?"
	msgConnectivity = "Sorry, I'm having trouble connecting. Please make sure the backend server is running."

	msgNiceToMeet  = "Nice to meet you, %s! What's your educational background?"
	msgNameUnclear = "I didn't catch your name clearly. Could you please tell me your name?"

	msgDomainPrompt         = "Perfect! Now, which tech domain interests you most?"
	msgDomainPromptFallback = "Let's continue. Which tech domain interests you most?"
	msgDomainUnknown        = "Sorry, I haven't been trained yet to provide counselling on that domain. Please select from the available options."

	msgEncouragement = "Feel free to ask me any questions about your results or how to improve your skills!"
	msgRoadmapOffer  = "Would you like a detailed, step-by-step roadmap for %s? (yes/no)"

	msgRoadmapDeclined = "No problem! Feel free to ask me anything else about your results."
	msgSwitchDeclined  = "No problem! We'll stick with %s."

	msgDomainApology   = "I had trouble understanding your domain selection. Please try selecting from the available options."
	msgAnswerApology   = "I had trouble processing your answer. Could you please try again?"
	msgChatApology     = "I encountered an error processing your message. Please try again."
	msgFeedbackApology = "I couldn't submit your feedback just now. Please try sharing it again."
	msgRoadmapApology  = "I had trouble preparing your roadmap. Please try again in a moment."
)
